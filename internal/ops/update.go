package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/contact"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/db"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/vcard"
)

// UpdateInput contains parameters for the Update operation.
type UpdateInput struct {
	ID    string // required
	VCard string // required, exactly one vCard object
}

// UpdateOutput contains the result of the Update operation.
type UpdateOutput struct {
	contact.Summary
}

// Update replaces a stored contact's record with one decoded from vCard text.
// The contact keeps its ID, person link and creation time. A missing UID in
// the new text keeps the stored one.
func Update(ctx context.Context, database *sql.DB, codec *vcard.Codec, input UpdateInput) (*UpdateOutput, error) {
	id, err := requireID(input.ID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.VCard) == "" {
		return nil, errors.NewInvalidRequest("vcard is required")
	}
	if len(input.VCard) > MaxDecodeBytes {
		return nil, errors.NewOutOfMemory(MaxDecodeBytes)
	}

	c, err := db.GetByID(database, id)
	if err != nil {
		return nil, err
	}

	recs, err := codec.DecodeAll(ctx, input.VCard)
	if err != nil {
		return nil, err
	}
	var images []string
	for _, r := range recs {
		images = append(images, vcard.ImagePaths(r)...)
	}
	if len(recs) != 1 {
		vcard.DiscardImages(images)
		return nil, errors.NewInvalidRequest(fmt.Sprintf("vcard must hold exactly one object, got %d", len(recs)))
	}

	rec := recs[0]
	if rec.UID == nil {
		rec.UID = c.UID
	}
	if rec.DisplayName == "" {
		rec.DisplayName = contact.DeriveDisplayName(rec)
	}
	c.Record = rec
	c.UID = rec.UID
	c.DisplayName = rec.DisplayName
	c.DisplayNorm = contact.Normalize(rec.DisplayName)
	c.UpdatedAt = time.Now().Unix()

	if err := db.UpdateRecord(database, c); err != nil {
		vcard.DiscardImages(images)
		return nil, err
	}
	return &UpdateOutput{Summary: c.ToSummary()}, nil
}
