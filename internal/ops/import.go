package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/config"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/contact"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/db"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/vcard"
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string // required, .vcf or .vcard
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int      `json:"imported"`
	IDs      []string `json:"ids"`
}

// Import decodes every vCard object in a file and stores the resulting
// contacts. The import is atomic: a decode or insert failure rolls back every
// contact from the file and removes the images it wrote.
func Import(ctx context.Context, database *sql.DB, cfg *config.Config, codec *vcard.Codec, input ImportInput) (*ImportOutput, error) {
	path := strings.TrimSpace(input.Path)
	if err := ValidatePath(path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openVCard(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().Unix()
	ids := []string{}
	var images []string
	var insertErr error

	err = codec.DecodeReader(ctx, file, func(rec *contact.Record) vcard.Action {
		images = append(images, vcard.ImagePaths(rec)...)
		c := newContact(rec, now)
		if insertErr = db.InsertTx(tx, c); insertErr != nil {
			return vcard.Stop
		}
		ids = append(ids, c.ID)
		return vcard.Continue
	})
	if err == nil {
		err = insertErr
	}
	if err == nil {
		if commitErr := tx.Commit(); commitErr != nil {
			err = errors.NewInternal(commitErr)
		}
	}
	if err != nil {
		vcard.DiscardImages(images)
		return nil, err
	}

	log().Info().Str("path", path).Int("imported", len(ids)).Msg("import complete")
	return &ImportOutput{Imported: len(ids), IDs: ids}, nil
}
