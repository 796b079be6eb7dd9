package ops

import (
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/contact"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/logger"
)

// BaseDirName is the directory under $HOME holding the database, exports and images.
const BaseDirName = ".contacts"

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
	MaxLinkItems     = 50
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return min(limit, MaxListLimit)
}

// requireID trims id and rejects an empty value.
func requireID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.NewInvalidRequest("id is required")
	}
	return id, nil
}

// newContact wraps a decoded record for storage. Records without a UID get
// a urn:uuid one so later exports stay stable.
func newContact(rec *contact.Record, now int64) *contact.Contact {
	if rec.UID == nil || strings.TrimSpace(*rec.UID) == "" {
		uid := "urn:uuid:" + uuid.NewString()
		rec.UID = &uid
	}
	if rec.DisplayName == "" {
		rec.DisplayName = contact.DeriveDisplayName(rec)
	}
	id := ulid.Make().String()
	return &contact.Contact{
		ID:          id,
		PersonID:    id,
		DisplayName: rec.DisplayName,
		DisplayNorm: contact.Normalize(rec.DisplayName),
		UID:         rec.UID,
		Record:      rec,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func log() *zerolog.Logger {
	return logger.Module("ops")
}
