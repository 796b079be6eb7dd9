package vcard

import "strings"

// Full-width delimiters some locales type in place of ';' and ':'.
const (
	fullWidthSemicolon = '；'
	fullWidthColon     = '：'
)

// Escape backslash-escapes value delimiters. Newlines become "\n" and carriage
// returns are dropped.
func Escape(s string) string {
	if !strings.ContainsAny(s, ";:,<>\\\r\n；：") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch r {
		case ';', ':', ',', '<', '>', '\\', fullWidthSemicolon, fullWidthColon:
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Unescape reverses Escape. A trailing lone backslash stays literal and an
// unknown escape keeps both characters.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if !escaped {
			if r == '\\' {
				escaped = true
				continue
			}
			b.WriteRune(r)
			continue
		}
		escaped = false
		switch r {
		case 'n', 'N':
			b.WriteByte('\n')
		case ';', ':', ',', '<', '>', '\\', fullWidthSemicolon, fullWidthColon:
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	if escaped {
		b.WriteByte('\\')
	}
	return b.String()
}

// splitEscaped splits s on sep where sep is not preceded by an escaping backslash.
// The parts are returned still escaped.
func splitEscaped(s string, sep byte) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case sep:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// components splits a structured value into exactly n unescaped parts.
// Extra parts are folded into the last one.
func components(s string, n int) []string {
	raw := splitEscaped(s, ';')
	out := make([]string, n)
	for i, p := range raw {
		if i >= n {
			out[n-1] += ";" + Unescape(p)
			continue
		}
		out[i] = Unescape(p)
	}
	return out
}
