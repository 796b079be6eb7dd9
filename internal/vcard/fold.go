package vcard

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxLineWidth is the visual width of a physical line, continuation space included.
const maxLineWidth = 75

// widthCond measures columns the same way regardless of the host locale.
var widthCond = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	c.StrictEmojiNeutral = true
	return c
}()

// Fold wraps every line of s so that no physical line exceeds 75 columns.
// Breaks are CRLF followed by one space and never fall inside a rune. A line
// carrying an ENCODING=B marker is counted one column per byte up to its first
// break.
func Fold(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/maxLineWidth*3)

	col := 0
	base64 := false
	atLineStart := true
	for i, r := range s {
		if atLineStart {
			base64 = hasBase64Marker(s[i:])
			atLineStart = false
		}
		switch r {
		case '\n':
			b.WriteRune(r)
			col = 0
			atLineStart = true
			continue
		case '\r':
			b.WriteRune(r)
			continue
		}

		w := 1
		if !base64 {
			w = widthCond.RuneWidth(r)
		}
		if col > 0 && col+w > maxLineWidth {
			b.WriteString("\r\n ")
			col = 1
			// The marker only covers the physical line it was found on.
			base64 = false
			w = widthCond.RuneWidth(r)
		}
		b.WriteRune(r)
		col += w
	}
	return b.String()
}

// hasBase64Marker reports whether the property header of the line starting at s
// declares base64 content.
func hasBase64Marker(s string) bool {
	end := strings.IndexAny(s, ":\n")
	if end < 0 {
		end = len(s)
	}
	header := strings.ToUpper(s[:end])
	return strings.Contains(header, "ENCODING=B")
}

var unfolder = strings.NewReplacer(
	"\r\n ", "",
	"\r\n\t", "",
	"\n ", "",
	"\n\t", "",
)

// Unfold removes folding line breaks (CRLF or LF followed by a space or tab).
func Unfold(s string) string {
	return unfolder.Replace(s)
}

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// normalizeNewlines converts CRLF and bare CR line ends to LF.
func normalizeNewlines(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	return lineEndings.Replace(s)
}
