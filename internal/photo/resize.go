// Package photo shrinks contact images before they are embedded in a vCard.
package photo

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/logger"
)

// JPEGQuality is used when re-encoding JPEG sources.
const JPEGQuality = 90

// Resizer scales images so their longest side fits a pixel limit.
// The zero value is ready to use.
type Resizer struct {
	// Scaler defaults to draw.CatmullRom.
	Scaler draw.Scaler
}

type result struct {
	data []byte
	err  error
}

// Resize decodes data, scales it to fit maxPixels on the long side and
// re-encodes it in the source format. Images already within the limit are
// returned unchanged. The call returns early with a SYSTEM_TRANSFORM error
// when ctx is done.
func (r Resizer) Resize(ctx context.Context, data []byte, maxPixels int) ([]byte, error) {
	if maxPixels <= 0 {
		return nil, errors.NewInvalidParameter(fmt.Sprintf("max pixels must be positive, got %d", maxPixels))
	}

	done := make(chan result, 1)
	go func() {
		out, err := r.resize(data, maxPixels)
		done <- result{out, err}
	}()

	select {
	case <-ctx.Done():
		logger.Module("photo").Warn().Err(ctx.Err()).Int("bytes", len(data)).Msg("resize abandoned")
		return nil, errors.NewSystemTransform(ctx.Err())
	case res := <-done:
		return res.data, res.err
	}
}

func (r Resizer) resize(data []byte, maxPixels int) ([]byte, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewSystemTransform(err)
	}

	b := src.Bounds()
	w, h := fit(b.Dx(), b.Dy(), maxPixels)
	if w == b.Dx() && h == b.Dy() {
		return data, nil
	}

	scaler := r.Scaler
	if scaler == nil {
		scaler = draw.CatmullRom
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	scaler.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, dst)
	case "gif":
		err = gif.Encode(&buf, dst, nil)
	case "bmp":
		err = bmp.Encode(&buf, dst)
	default:
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality})
	}
	if err != nil {
		return nil, errors.NewSystemTransform(err)
	}
	return buf.Bytes(), nil
}

// fit scales w x h down so the longer side equals limit, keeping the aspect ratio.
func fit(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}
