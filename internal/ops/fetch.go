package ops

import (
	"context"
	"database/sql"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/contact"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/db"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/vcard"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID           string
	IncludeVCard bool
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	contact.Summary
	Record    *contact.Record `json:"record"`
	LinkedIDs []string        `json:"linked_ids"`
	VCard     string          `json:"vcard,omitempty"`
}

// Fetch retrieves one contact with its record and the IDs of contacts linked
// to the same person.
func Fetch(ctx context.Context, database *sql.DB, codec *vcard.Codec, input FetchInput) (*FetchOutput, error) {
	id, err := requireID(input.ID)
	if err != nil {
		return nil, err
	}

	c, err := db.GetByID(database, id)
	if err != nil {
		return nil, err
	}

	linked, err := db.ListByPerson(database, c.PersonID)
	if err != nil {
		return nil, err
	}
	output := &FetchOutput{
		Summary:   c.ToSummary(),
		Record:    c.Record,
		LinkedIDs: []string{},
	}
	for _, l := range linked {
		if l.ID != c.ID {
			output.LinkedIDs = append(output.LinkedIDs, l.ID)
		}
	}

	if input.IncludeVCard {
		if output.VCard, err = codec.Encode(ctx, c.Record); err != nil {
			return nil, err
		}
	}
	return output, nil
}
