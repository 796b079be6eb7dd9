package ops

import (
	"database/sql"
	"fmt"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/db"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
)

// LinkInput contains parameters for the Link operation.
type LinkInput struct {
	IDs []string // 2..50 contact IDs
}

// LinkOutput contains the result of the Link operation.
type LinkOutput struct {
	PersonID string   `json:"person_id"`
	IDs      []string `json:"ids"`
}

// Link marks contacts as describing the same person. Every contact takes the
// person_id of the first one, so contacts already linked to it stay linked.
func Link(database *sql.DB, input LinkInput) (*LinkOutput, error) {
	ids := make([]string, 0, len(input.IDs))
	seen := make(map[string]bool, len(input.IDs))
	for _, raw := range input.IDs {
		id, err := requireID(raw)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) < 2 {
		return nil, errors.NewInvalidRequest("at least two distinct ids are required")
	}
	if len(ids) > MaxLinkItems {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("at most %d ids can be linked at once", MaxLinkItems))
	}

	first, err := db.GetByID(database, ids[0])
	if err != nil {
		return nil, err
	}
	if err := db.SetPerson(database, ids, first.PersonID); err != nil {
		return nil, err
	}

	log().Debug().Str("person_id", first.PersonID).Int("count", len(ids)).Msg("contacts linked")
	return &LinkOutput{PersonID: first.PersonID, IDs: ids}, nil
}
