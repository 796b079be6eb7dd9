package ops

import (
	"database/sql"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/db"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID string
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// Delete permanently removes a contact. Image files the record points to are
// left on disk.
func Delete(database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	id, err := requireID(input.ID)
	if err != nil {
		return nil, err
	}
	if err := db.Delete(database, id); err != nil {
		return nil, err
	}
	log().Debug().Str("id", id).Msg("contact deleted")
	return &DeleteOutput{Deleted: true, ID: id}, nil
}
