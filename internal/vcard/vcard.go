// Package vcard converts contact records to and from vCard 2.1/3.0 text.
//
// Decoding accepts either version, folded or unfolded, with CRLF, LF or CR line
// ends. Encoding always produces folded vCard 3.0 with CRLF line ends.
package vcard

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/contact"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/logger"
)

// Options configures a Codec. Zero values select defaults.
type Options struct {
	// ImageDir receives PHOTO and LOGO data found while decoding.
	// Empty means embedded images are skipped.
	ImageDir string

	// Transcoder converts non UTF-8 values. Defaults to TextTranscoder.
	Transcoder Transcoder

	// Transformer resizes oversized photos while encoding. Nil disables resizing.
	Transformer PhotoTransformer

	// TransformTimeout bounds each Transformer call. Defaults to 4s.
	TransformTimeout time.Duration
}

// Codec encodes and decodes vCards. It is safe for concurrent use.
type Codec struct {
	opts Options
}

// New returns a Codec with opts applied over the defaults.
func New(opts Options) *Codec {
	if opts.Transcoder == nil {
		opts.Transcoder = TextTranscoder{}
	}
	if opts.TransformTimeout <= 0 {
		opts.TransformTimeout = DefaultTransformTimeout
	}
	return &Codec{opts: opts}
}

// Action tells DecodeEach whether to keep going.
type Action int

const (
	Continue Action = iota
	Stop
)

func log() *zerolog.Logger {
	return logger.Module("vcard")
}

// Encode renders one record as a vCard 3.0 object.
func (c *Codec) Encode(ctx context.Context, rec *contact.Record) (string, error) {
	if rec == nil {
		return "", errors.NewInvalidParameter("record is required")
	}
	return c.encode(ctx, rec)
}

// EncodeAggregate merges several records of one person into a single object.
// The name, company and UID come from the first record that has them; the
// revision is the latest among all records.
func (c *Codec) EncodeAggregate(ctx context.Context, recs []*contact.Record) (string, error) {
	if len(recs) == 0 {
		return "", errors.NewInvalidParameter("at least one record is required")
	}
	for _, r := range recs {
		if r == nil {
			return "", errors.NewInvalidParameter("record is required")
		}
	}
	return c.encode(ctx, aggregate(recs))
}

func aggregate(recs []*contact.Record) *contact.Record {
	out := &contact.Record{}
	for _, r := range recs {
		if out.DisplayName == "" {
			out.DisplayName = r.DisplayName
		}
		if out.Name.Empty() && !r.Name.Empty() {
			out.Name = r.Name
		}
		if out.Company.Empty() && !r.Company.Empty() {
			out.Company = r.Company
		}
		if out.UID == nil && r.UID != nil {
			out.UID = r.UID
		}
		if r.Revision != nil && (out.Revision == nil || r.Revision.After(*out.Revision)) {
			out.Revision = r.Revision
		}
		out.Numbers = append(out.Numbers, r.Numbers...)
		out.Emails = append(out.Emails, r.Emails...)
		out.Addresses = append(out.Addresses, r.Addresses...)
		out.Nicknames = append(out.Nicknames, r.Nicknames...)
		out.URLs = append(out.URLs, r.URLs...)
		out.Events = append(out.Events, r.Events...)
		out.Notes = append(out.Notes, r.Notes...)
		out.Photos = append(out.Photos, r.Photos...)
		out.Messengers = append(out.Messengers, r.Messengers...)
		out.Relationships = append(out.Relationships, r.Relationships...)
	}
	return out
}

// DecodeAll splits stream into objects and decodes each of them. Nested objects
// are returned before the object that contained them.
func (c *Codec) DecodeAll(ctx context.Context, stream string) ([]*contact.Record, error) {
	objects, _ := Split(stream)
	if len(objects) == 0 {
		if strings.TrimSpace(stream) != "" {
			return nil, errors.NewInvalidFormat("no vcard object found")
		}
		return nil, nil
	}

	recs := make([]*contact.Record, 0, len(objects))
	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			for _, r := range recs {
				DiscardImages(ImagePaths(r))
			}
			return nil, errors.NewCancelled("decode")
		}
		rec, err := c.decodeObject(obj)
		if err != nil {
			for _, r := range recs {
				DiscardImages(ImagePaths(r))
			}
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
