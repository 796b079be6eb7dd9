package ops

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/contact"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/vcard"
)

// EncodeInput contains parameters for the Encode operation.
type EncodeInput struct {
	Records   []*contact.Record // required
	Aggregate bool              // merge all records into one vCard

	// ImageRoot, when set, restricts photo and logo paths to files directly
	// inside this directory.
	ImageRoot string
}

// EncodeOutput contains the result of the Encode operation.
type EncodeOutput struct {
	VCard string `json:"vcard"`
	Count int    `json:"count"`
}

// Encode renders records as vCard 3.0 text without touching the store.
func Encode(ctx context.Context, codec *vcard.Codec, input EncodeInput) (*EncodeOutput, error) {
	if len(input.Records) == 0 {
		return nil, errors.NewInvalidRequest("at least one record is required")
	}
	for i, rec := range input.Records {
		if rec == nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("records[%d] is null", i))
		}
		if input.ImageRoot != "" {
			for _, p := range vcard.ImagePaths(rec) {
				if !inImageRoot(p, input.ImageRoot) {
					return nil, errors.NewInvalidRequest(fmt.Sprintf("image %q is outside %s", p, input.ImageRoot))
				}
			}
		}
	}

	if input.Aggregate {
		text, err := codec.EncodeAggregate(ctx, input.Records)
		if err != nil {
			return nil, err
		}
		return &EncodeOutput{VCard: text, Count: 1}, nil
	}

	var b strings.Builder
	for _, rec := range input.Records {
		text, err := codec.Encode(ctx, rec)
		if err != nil {
			return nil, err
		}
		b.WriteString(text)
	}
	return &EncodeOutput{VCard: b.String(), Count: len(input.Records)}, nil
}

func inImageRoot(path, root string) bool {
	if containsTraversal(path) {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	return filepath.Dir(absPath) == filepath.Clean(absRoot)
}
