package vcard

import (
	"strings"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/contact"
)

// Keywords matched by substring in bitset groups. Extended keywords only match a
// whole token, with or without the "x-" prefix.
var (
	numberSubstring = []contact.Keyword{
		{Name: "home", Type: contact.NumberHome}, {Name: "work", Type: contact.NumberWork},
		{Name: "voice", Type: contact.NumberVoice}, {Name: "fax", Type: contact.NumberFax},
		{Name: "msg", Type: contact.NumberMsg}, {Name: "cell", Type: contact.NumberCell},
		{Name: "pager", Type: contact.NumberPager}, {Name: "bbs", Type: contact.NumberBBS},
		{Name: "modem", Type: contact.NumberModem}, {Name: "car", Type: contact.NumberCar},
		{Name: "isdn", Type: contact.NumberISDN}, {Name: "video", Type: contact.NumberVideo},
		{Name: "pcs", Type: contact.NumberPCS},
	}
	emailSubstring = []contact.Keyword{
		{Name: "home", Type: contact.EmailHome}, {Name: "work", Type: contact.EmailWork},
		{Name: "cell", Type: contact.EmailMobile}, {Name: "mobile", Type: contact.EmailMobile},
	}
)

// parseTypes maps type tokens onto a TypeSet for group g. A token "x-foo" that is
// not a known keyword yields Custom with label "foo".
func parseTypes(g contact.Group, tokens []string) (contact.TypeSet, string) {
	var ts contact.TypeSet
	var label string
	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		if rest, ok := strings.CutPrefix(lower, "x-"); ok {
			if kw, found := exactKeyword(g, rest); found {
				ts = merge(g, ts, kw)
				continue
			}
			if rest != "" {
				ts = contact.Custom
				label = tok[2:]
			}
			continue
		}
		if kw, found := exactKeyword(g, lower); found {
			ts = merge(g, ts, kw)
			continue
		}
		if !g.Bitset() {
			continue
		}
		for _, kw := range substringKeywords(g) {
			if strings.Contains(lower, kw.Name) {
				ts = merge(g, ts, kw.Type)
			}
		}
	}
	if ts.Has(contact.Custom) {
		return contact.Custom, label
	}
	return ts, ""
}

func merge(g contact.Group, ts, t contact.TypeSet) contact.TypeSet {
	if ts.Has(contact.Custom) {
		return ts
	}
	if g.Bitset() {
		return ts | t
	}
	return t
}

func exactKeyword(g contact.Group, name string) (contact.TypeSet, bool) {
	for _, kw := range contact.Keywords(g) {
		if kw.Name == name {
			return kw.Type, true
		}
	}
	return 0, false
}

func substringKeywords(g contact.Group) []contact.Keyword {
	switch g {
	case contact.GroupNumber:
		return numberSubstring
	case contact.GroupEmail:
		return emailSubstring
	default:
		return contact.Keywords(g)
	}
}

// Wire spellings for types. Types without an entry are written upper-cased.
var numberWire = map[contact.TypeSet]string{
	contact.NumberCompanyMain: "X-COMPANY-MAIN",
	contact.NumberRadio:       "X-RADIO",
	contact.NumberMain:        "X-MAIN",
	contact.NumberAssistant:   "X-ASSISTANT",
}

var emailWire = map[contact.TypeSet]string{
	contact.EmailMobile: "CELL",
}

// formatTypes renders ";TYPE=..." for an entry. An invalid custom label emits no
// TYPE parameter at all.
func formatTypes(g contact.Group, ts contact.TypeSet, label string) string {
	if ts.Has(contact.Custom) {
		if contact.ValidLabel(label) {
			return ";TYPE=X-" + label
		}
		return ""
	}
	var names []string
	for _, kw := range contact.Keywords(g) {
		if g.Bitset() && !ts.Has(kw.Type) || !g.Bitset() && ts != kw.Type {
			continue
		}
		name := strings.ToUpper(kw.Name)
		switch g {
		case contact.GroupNumber:
			if w, ok := numberWire[kw.Type]; ok {
				name = w
			}
		case contact.GroupEmail:
			if w, ok := emailWire[kw.Type]; ok {
				name = w
			}
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return ""
	}
	return ";TYPE=" + strings.Join(names, ",")
}
