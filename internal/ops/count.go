package ops

import (
	"strings"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/config"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/vcard"
)

// CountInput contains parameters for the Count operation.
type CountInput struct {
	Path string // required
}

// CountOutput contains the result of the Count operation.
type CountOutput struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// Count reports how many vCard objects a file holds without decoding them.
func Count(cfg *config.Config, input CountInput) (*CountOutput, error) {
	path := strings.TrimSpace(input.Path)
	if err := ValidatePath(path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openVCard(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	n, err := vcard.CountReader(file)
	if err != nil {
		return nil, err
	}
	return &CountOutput{Path: path, Count: n}, nil
}
