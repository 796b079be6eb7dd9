package vcard

import "strings"

const (
	beginMarker = "BEGIN:VCARD"
	endMarker   = "END:VCARD"
)

// Split separates a stream into the text of its vCard objects and returns the
// offset just past the last consumed END:VCARD. A nested object is returned
// ahead of its parent, and the parent text no longer contains it. Splitting
// stops quietly at text that does not start an object or at a BEGIN:VCARD
// without a matching END:VCARD.
func Split(stream string) ([]string, int) {
	var objects []string
	cursor := 0
	for {
		start := skipLineBreaks(stream, cursor)
		if !hasPrefixFold(stream[start:], beginMarker) {
			return objects, cursor
		}
		found, end, ok := extract(stream, start)
		if !ok {
			return objects, cursor
		}
		objects = append(objects, found...)
		cursor = end
	}
}

// extract reads the object beginning at start. It returns the nested objects
// followed by the stitched parent, and the offset past the parent's END:VCARD.
func extract(s string, start int) ([]string, int, bool) {
	var (
		found  []string
		parent strings.Builder
	)
	pos := start + len(beginMarker)
	parent.WriteString(s[start:pos])
	for {
		end := indexAtLineStart(s, endMarker, pos)
		if end < 0 {
			return nil, 0, false
		}
		begin := indexAtLineStart(s, beginMarker, pos)
		if begin >= 0 && begin < end {
			parent.WriteString(s[pos:begin])
			children, childEnd, ok := extract(s, begin)
			if !ok {
				return nil, 0, false
			}
			found = append(found, children...)
			pos = skipOneLineBreak(s, childEnd)
			continue
		}
		stop := end + len(endMarker)
		parent.WriteString(s[pos:stop])
		return append(found, parent.String()), stop, true
	}
}

// indexAtLineStart finds marker, ignoring case, at the start of a line at or after from.
func indexAtLineStart(s, marker string, from int) int {
	i := from
	for i < len(s) {
		if (i == 0 || s[i-1] == '\n' || s[i-1] == '\r') && hasPrefixFold(s[i:], marker) {
			return i
		}
		j := strings.IndexAny(s[i:], "\r\n")
		if j < 0 {
			return -1
		}
		i += j + 1
	}
	return -1
}

func skipLineBreaks(s string, i int) int {
	for i < len(s) {
		switch s[i] {
		case '\r', '\n', ' ', '\t':
			i++
		default:
			return i
		}
	}
	return i
}

func skipOneLineBreak(s string, i int) int {
	if strings.HasPrefix(s[i:], "\r\n") {
		return i + 2
	}
	if i < len(s) && (s[i] == '\n' || s[i] == '\r') {
		return i + 1
	}
	return i
}
