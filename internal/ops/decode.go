package ops

import (
	"context"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/contact"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/vcard"
)

// MaxDecodeBytes bounds the text accepted by Decode and Update.
const MaxDecodeBytes = vcard.MaxObjectBytes

// DecodeInput contains parameters for the Decode operation.
type DecodeInput struct {
	Text string // one or more vCard objects
}

// DecodeOutput contains the result of the Decode operation.
type DecodeOutput struct {
	Records []*contact.Record `json:"records"`
	Count   int               `json:"count"`
}

// Decode parses vCard text into records without storing them. Embedded
// images are written only when the codec has an image directory.
func Decode(ctx context.Context, codec *vcard.Codec, input DecodeInput) (*DecodeOutput, error) {
	if len(input.Text) > MaxDecodeBytes {
		return nil, errors.NewOutOfMemory(MaxDecodeBytes)
	}
	recs, err := codec.DecodeAll(ctx, input.Text)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []*contact.Record{}
	}
	return &DecodeOutput{Records: recs, Count: len(recs)}, nil
}
