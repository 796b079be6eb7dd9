package vcard

import (
	"strings"
	"unicode/utf8"
)

type valueEncoding int

const (
	encodingNone valueEncoding = iota
	encodingQuotedPrintable
	encodingBase64
)

// params is the parsed text between a tag and its value separator.
type params struct {
	types    []string
	charset  string
	encoding valueEncoding
	pref     bool
}

// parseParams reads ";TYPE=a,b;CHARSET=x;ENCODING=y" style prefixes. Bare tokens
// from vCard 2.1 are treated as type tokens unless they name an encoding.
func parseParams(prefix string) params {
	p := params{charset: "UTF-8"}
	for _, tok := range strings.Split(prefix, ";") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		key, val, hasVal := strings.Cut(tok, "=")
		if !hasVal {
			switch strings.ToUpper(tok) {
			case "QUOTED-PRINTABLE":
				p.encoding = encodingQuotedPrintable
			case "BASE64":
				p.encoding = encodingBase64
			case "PREF":
				p.pref = true
			case "7BIT", "8BIT":
			default:
				p.types = append(p.types, tok)
			}
			continue
		}

		val = strings.Trim(strings.TrimSpace(val), `"`)
		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "TYPE":
			for _, t := range strings.Split(val, ",") {
				t = strings.TrimSpace(t)
				switch {
				case t == "":
				case strings.EqualFold(t, "PREF"):
					p.pref = true
				default:
					p.types = append(p.types, t)
				}
			}
		case "CHARSET":
			if val != "" {
				p.charset = val
			}
		case "ENCODING":
			switch strings.ToUpper(val) {
			case "QUOTED-PRINTABLE":
				p.encoding = encodingQuotedPrintable
			case "BASE64", "B":
				p.encoding = encodingBase64
			}
		case "PREF":
			p.pref = true
		}
	}
	return p
}

func isUTF8(charset string) bool {
	return charset == "" || strings.EqualFold(charset, "UTF-8") || strings.EqualFold(charset, "UTF8")
}

// decodeValue applies quoted-printable decoding and charset transcoding to a raw
// value. It reports false when the value cannot be represented and must be dropped.
func decodeValue(raw string, p params, tc Transcoder) (string, bool) {
	data := []byte(raw)
	if p.encoding == encodingQuotedPrintable {
		data = decodeQuotedPrintable(data)
	}
	if !isUTF8(p.charset) && p.encoding != encodingBase64 {
		if tc == nil {
			return "", false
		}
		s, err := tc.Transcode(data, p.charset)
		if err != nil {
			log().Debug().Err(err).Str("charset", p.charset).Msg("transcode failed, dropping property")
			return "", false
		}
		return s, true
	}
	if p.encoding == encodingBase64 {
		return string(data), true
	}
	if !utf8.Valid(data) {
		return strings.ToValidUTF8(string(data), "\uFFFD"), true
	}
	return string(data), true
}

// decodeQuotedPrintable decodes =XX octets and removes soft line breaks. Malformed
// escapes pass through unchanged.
func decodeQuotedPrintable(src []byte) []byte {
	out := make([]byte, 0, len(src))
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c != '=' {
			out = append(out, c)
			continue
		}
		rest := src[i+1:]
		switch {
		case len(rest) >= 1 && rest[0] == '\n':
			i++
		case len(rest) >= 2 && rest[0] == '\r' && rest[1] == '\n':
			i += 2
		case len(rest) >= 2 && isHex(rest[0]) && isHex(rest[1]):
			out = append(out, unhex(rest[0])<<4|unhex(rest[1]))
			i += 2
		default:
			out = append(out, c)
		}
	}
	return out
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
