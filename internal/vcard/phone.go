package vcard

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// CleanForExport rewrites a stored number into its interchange form: pause
// characters become 'p', wait characters become 'w', letters are upper-cased and
// anything that is not dialable is dropped.
func CleanForExport(number string) string {
	var b strings.Builder
	for _, r := range narrow(number) {
		switch {
		case r == ',' || r == 'p' || r == 'P':
			b.WriteByte('p')
		case r == ';' || r == 'w' || r == 'W':
			b.WriteByte('w')
		case isDialable(r):
			b.WriteRune(r)
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanForImport rewrites an interchange number into its stored form: 'p' becomes
// ',' and 'w' becomes ';'. Separators such as '-' and spaces are dropped.
func CleanForImport(number string) string {
	var b strings.Builder
	for _, r := range narrow(number) {
		switch {
		case r == ',' || r == 'p' || r == 'P':
			b.WriteByte(',')
		case r == ';' || r == 'w' || r == 'W':
			b.WriteByte(';')
		case isDialable(r):
			b.WriteRune(r)
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isDialable(r rune) bool {
	if r >= '0' && r <= '9' {
		return true
	}
	switch r {
	case '#', '*', '(', ')', '+', '.', '/':
		return true
	}
	return false
}

// narrow folds full-width digits and punctuation to ASCII and drops invalid UTF-8.
func narrow(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return width.Narrow.String(s)
}
