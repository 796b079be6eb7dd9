package contact

import (
	"regexp"
	"strings"
)

// Contact is a record as persisted by the store.
type Contact struct {
	// ID is a ULID assigned on insert.
	ID string

	// PersonID groups contacts that describe the same person. It defaults to ID.
	PersonID string

	DisplayName string

	// DisplayNorm is DisplayName normalized for sorting and lookup.
	DisplayNorm string

	UID    *string
	Record *Record

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// Summary is a contact's metadata without the record body.
// Used by list operations.
type Summary struct {
	ID          string  `json:"id"`
	PersonID    string  `json:"person_id"`
	DisplayName string  `json:"display_name"`
	UID         *string `json:"uid,omitempty"`
	CreatedAt   int64   `json:"created_at"`
	UpdatedAt   int64   `json:"updated_at"`
}

// ToSummary strips the record body.
func (c *Contact) ToSummary() Summary {
	return Summary{
		ID:          c.ID,
		PersonID:    c.PersonID,
		DisplayName: c.DisplayName,
		UID:         c.UID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize trims, lowercases and collapses internal whitespace.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return whitespaceRegex.ReplaceAllString(s, " ")
}
