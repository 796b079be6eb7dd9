package vcard

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	_ "golang.org/x/image/bmp"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/contact"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
)

const (
	MinPhotoPixels     = 8
	MaxPhotoPixels     = 1080
	DefaultPhotoPixels = 480

	// MaxRawPhotoBytes caps the size of an image embedded without resizing.
	MaxRawPhotoBytes = 1 << 20

	DefaultTransformTimeout = 4 * time.Second
)

// PhotoTransformer shrinks an encoded image so its longest side fits maxPixels.
type PhotoTransformer interface {
	Resize(ctx context.Context, data []byte, maxPixels int) ([]byte, error)
}

var photoMaxPixels atomic.Int32

func init() {
	photoMaxPixels.Store(DefaultPhotoPixels)
}

// PhotoMaxPixels returns the process-wide photo size limit.
func PhotoMaxPixels() int {
	return int(photoMaxPixels.Load())
}

// SetPhotoMaxPixels changes the process-wide photo size limit.
func SetPhotoMaxPixels(n int) error {
	if n < MinPhotoPixels || n > MaxPhotoPixels {
		e := errors.NewInvalidParameter(fmt.Sprintf("photo max pixels must be within %d..%d, got %d", MinPhotoPixels, MaxPhotoPixels, n))
		e.Details = map[string]any{"min": MinPhotoPixels, "max": MaxPhotoPixels, "value": n}
		return e
	}
	photoMaxPixels.Store(int32(n))
	return nil
}

// imageKind returns the TYPE parameter value and file suffix for encoded image data.
func imageKind(data []byte) (string, string) {
	switch http.DetectContentType(data) {
	case "image/png":
		return "PNG", ".png"
	case "image/gif":
		return "GIF", ".gif"
	case "image/bmp":
		return "BMP", ".bmp"
	default:
		return "JPEG", ".jpg"
	}
}

// loadImage reads an image file for embedding. Oversized images go through the
// transformer; if that fails the original bytes are used when they fit
// MaxRawPhotoBytes. ok is false when the image is omitted.
func (c *Codec) loadImage(ctx context.Context, path string) (data []byte, ok bool, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false, errors.NewIO(err)
	}
	if len(raw) == 0 {
		return nil, false, nil
	}

	limit := PhotoMaxPixels()
	cfg, _, cfgErr := image.DecodeConfig(bytes.NewReader(raw))
	if cfgErr == nil && max(cfg.Width, cfg.Height) <= limit {
		return raw, true, nil
	}

	var transformErr error
	switch {
	case cfgErr != nil:
		transformErr = errors.NewSystemTransform(cfgErr)
	case c.opts.Transformer == nil:
		transformErr = errors.NewSystemTransform(fmt.Errorf("no transformer configured"))
	default:
		tctx, cancel := context.WithTimeout(ctx, c.opts.TransformTimeout)
		resized, err := c.opts.Transformer.Resize(tctx, raw, limit)
		cancel()
		if err == nil && len(resized) > 0 {
			return resized, true, nil
		}
		transformErr = err
	}

	if len(raw) <= MaxRawPhotoBytes {
		log().Warn().Err(transformErr).Str("path", path).Msg("photo transform failed, embedding original")
		return raw, true, nil
	}
	log().Warn().Err(transformErr).Str("path", path).Int("bytes", len(raw)).Msg("photo transform failed, omitting image")
	return nil, false, nil
}

// saveImage writes decoded image data under the image directory and returns its path.
func (c *Codec) saveImage(data []byte) (string, error) {
	if err := os.MkdirAll(c.opts.ImageDir, 0700); err != nil {
		return "", errors.NewIO(err)
	}
	_, suffix := imageKind(data)
	path := filepath.Join(c.opts.ImageDir, ulid.Make().String()+suffix)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", errors.NewIO(err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", errors.NewIO(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", errors.NewIO(err)
	}
	return path, nil
}

// ImagePaths lists the image files a decoded record refers to.
func ImagePaths(rec *contact.Record) []string {
	var out []string
	for _, p := range rec.Photos {
		out = append(out, p.Path)
	}
	if rec.Company != nil && rec.Company.Logo != "" {
		out = append(out, rec.Company.Logo)
	}
	return out
}

// DiscardImages removes image files written by a decode whose records were
// not kept. Missing files are ignored.
func DiscardImages(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log().Warn().Err(err).Str("path", p).Msg("failed to remove image")
		}
	}
}
