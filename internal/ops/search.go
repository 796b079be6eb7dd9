package ops

import (
	"database/sql"
	"fmt"
	"unicode/utf8"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/contact"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/db"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
)

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Query  string // required, matched against display name and UID
	Limit  int    // default: 20, max: 100
	Offset int    // default: 0
}

// SearchOutput contains the result of the Search operation.
type SearchOutput struct {
	Items      []contact.Summary `json:"items"`
	Pagination Pagination        `json:"pagination"`
	Sort       string            `json:"sort"`
}

// Search finds contacts whose display name or UID contains the query,
// ignoring case and repeated whitespace.
func Search(database *sql.DB, input SearchInput) (*SearchOutput, error) {
	query := contact.Normalize(input.Query)
	if query == "" {
		return nil, errors.NewInvalidRequest("query is required")
	}
	if utf8.RuneCountInString(query) > db.MaxSearchQueryChars {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("query exceeds %d characters", db.MaxSearchQueryChars))
	}

	limit := clampLimit(input.Limit)
	offset := max(input.Offset, 0)

	items, total, err := db.Search(database, query, limit, offset)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "display_name_asc",
	}, nil
}
