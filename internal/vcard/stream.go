package vcard

import (
	"bufio"
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"strings"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/contact"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
)

// MaxObjectBytes bounds one object (nested children included) read by DecodeEach.
const MaxObjectBytes = 16 << 20

// scanLines splits on CRLF, LF or a bare CR.
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// A CR at the end of the buffer may be the first half of CRLF.
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func newScanner(r io.Reader, limit int) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), limit)
	sc.Split(scanLines)
	return sc
}

func scanErr(err error) error {
	if stderrors.Is(err, bufio.ErrTooLong) {
		return errors.NewOutOfMemory(MaxObjectBytes)
	}
	return errors.NewIO(err)
}

// DecodeEach decodes the objects of a file one at a time and hands each record
// to fn. Returning Stop ends the scan without error. The first hard error is
// returned and stops the scan.
func (c *Codec) DecodeEach(ctx context.Context, path string, fn func(*contact.Record) Action) error {
	if fn == nil {
		return errors.NewInvalidParameter("callback is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return errors.NewIO(err)
	}
	defer f.Close()
	return c.DecodeReader(ctx, f, fn)
}

// DecodeReader is DecodeEach over an already opened stream.
func (c *Codec) DecodeReader(ctx context.Context, r io.Reader, fn func(*contact.Record) Action) error {
	if fn == nil {
		return errors.NewInvalidParameter("callback is required")
	}

	var (
		buf     strings.Builder
		depth   int
		objects int
		content bool
	)
	sc := newScanner(r, MaxObjectBytes)
	for sc.Scan() {
		line := sc.Text()

		if depth == 0 {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if !hasPrefixFold(line, beginMarker) {
				// Trailing text that is not a vCard ends the stream.
				content = true
				break
			}
		}

		switch {
		case hasPrefixFold(line, beginMarker):
			depth++
		case hasPrefixFold(line, endMarker):
			depth--
		}
		buf.WriteString(line)
		buf.WriteString("\r\n")
		if buf.Len() > MaxObjectBytes {
			return errors.NewOutOfMemory(MaxObjectBytes)
		}
		if depth > 0 {
			continue
		}

		if ctx.Err() != nil {
			return errors.NewCancelled("decode")
		}
		parts, _ := Split(buf.String())
		buf.Reset()
		for _, part := range parts {
			rec, err := c.decodeObject(part)
			if err != nil {
				return err
			}
			objects++
			if fn(rec) == Stop {
				return nil
			}
		}
	}
	if err := sc.Err(); err != nil {
		return scanErr(err)
	}
	if objects == 0 && content {
		return errors.NewInvalidFormat("no vcard object found")
	}
	return nil
}

// CountObjects counts END:VCARD lines in a file without decoding.
func CountObjects(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.NewIO(err)
	}
	defer f.Close()
	return CountReader(f)
}

// CountReader is CountObjects over an already opened stream.
func CountReader(r io.Reader) (int, error) {
	n := 0
	sc := newScanner(r, MaxObjectBytes)
	for sc.Scan() {
		if hasPrefixFold(sc.Text(), endMarker) {
			n++
		}
	}
	if err := sc.Err(); err != nil {
		return 0, scanErr(err)
	}
	return n, nil
}
