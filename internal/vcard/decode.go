package vcard

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/contact"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
)

// Version is the vCard version of a decoded object.
type Version int

const (
	V21 Version = iota
	V30
)

func (v Version) String() string {
	if v == V30 {
		return "3.0"
	}
	return "2.1"
}

// Property is one content line of an object. Params is the raw text between
// the tag and the value separator.
type Property struct {
	Name   string
	Params string
	Value  string

	id propID
}

// Object is the wire form of a single vCard, discarded once converted.
type Object struct {
	Version    Version
	Properties []Property
}

type decodeState int

const (
	awaitBegin decodeState = iota
	awaitVersion
	propertyLoop
	done
)

// Parse tokenizes the text of a single BEGIN:VCARD..END:VCARD object. Lines with
// unknown tags are dropped.
func Parse(text string) (*Object, error) {
	lines := strings.Split(Unfold(normalizeNewlines(text)), "\n")
	obj := &Object{Version: V21}

	state := awaitBegin
	i := 0
	for state != done {
		if i >= len(lines) {
			if state == awaitBegin {
				return nil, errors.NewInvalidFormat("missing BEGIN:VCARD")
			}
			return nil, errors.NewInvalidFormat("missing END:VCARD")
		}
		line := lines[i]
		i++
		if strings.TrimSpace(line) == "" {
			continue
		}

		switch state {
		case awaitBegin:
			if !hasPrefixFold(strings.TrimSpace(line), "BEGIN:VCARD") {
				return nil, errors.NewInvalidFormat("missing BEGIN:VCARD")
			}
			state = awaitVersion
		case awaitVersion:
			state = propertyLoop
			if v, ok := strings.CutPrefix(strings.ToUpper(line), "VERSION:"); ok {
				if strings.TrimSpace(v) == "3.0" {
					obj.Version = V30
				}
				continue
			}
			i--
		case propertyLoop:
			var prop *Property
			prop, i = readProperty(lines, i-1)
			if prop == nil {
				continue
			}
			if prop.id == propEnd {
				state = done
				continue
			}
			obj.Properties = append(obj.Properties, *prop)
		}
	}
	return obj, nil
}

// readProperty tokenizes the content line at lines[at] and returns the index of
// the next unread line, which is always past at. A nil property means the line
// was not recognized.
func readProperty(lines []string, at int) (*Property, int) {
	next := at + 1
	line := stripGroup(lines[at])

	id, n, ok := lookupTag(line)
	if !ok {
		return nil, next
	}
	rest := line[n:]
	if rest == "" || (rest[0] != ':' && rest[0] != ';') {
		return nil, next
	}
	if id == propEnd {
		return &Property{Name: id.tag(), id: id}, next
	}

	sep := valueSeparator(rest)
	if sep < 0 {
		return nil, next
	}
	prop := &Property{Name: id.tag(), Params: rest[:sep], Value: rest[sep+1:], id: id}

	// Quoted-printable soft breaks continue the value on the next physical line.
	if strings.Contains(strings.ToUpper(prop.Params), "QUOTED-PRINTABLE") {
		for strings.HasSuffix(prop.Value, "=") && next < len(lines) {
			prop.Value += "\n" + lines[next]
			next++
		}
	}
	return prop, next
}

// decoder converts one Object into a record.
type decoder struct {
	codec   *Codec
	version Version
	rec     *contact.Record
	fn      string
	written []string // image files saved for this object
}

func (c *Codec) decodeObject(text string) (*contact.Record, error) {
	obj, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return c.toRecord(obj)
}

func (c *Codec) toRecord(obj *Object) (*contact.Record, error) {
	d := &decoder{codec: c, version: obj.Version, rec: &contact.Record{}}
	for _, prop := range obj.Properties {
		p := parseParams(prop.Params)
		value, ok := decodeValue(prop.Value, p, c.opts.Transcoder)
		if !ok {
			continue
		}
		if err := d.dispatch(prop.id, p, value); err != nil {
			DiscardImages(d.written)
			return nil, err
		}
	}
	d.finish()
	return d.rec, nil
}

// valueSeparator returns the index of the ':' that ends the parameters,
// skipping colons inside double-quoted parameter values.
func valueSeparator(s string) int {
	quoted := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			quoted = !quoted
		case ':':
			if !quoted {
				return i
			}
		}
	}
	return -1
}

func (d *decoder) dispatch(id propID, p params, value string) error {
	switch id.group() {
	case groupName:
		d.decodeName(id, value)
	case groupNickname:
		for _, part := range splitEscaped(value, ',') {
			if s := strings.TrimSpace(Unescape(part)); s != "" {
				d.rec.Nicknames = append(d.rec.Nicknames, contact.Nickname{Name: s})
			}
		}
	case groupPhoto:
		path, err := d.decodeImage(id, p, value)
		if err != nil || path == "" {
			return err
		}
		d.rec.Photos = append(d.rec.Photos, contact.Photo{Path: path, IsDefault: len(d.rec.Photos) == 0})
	case groupEvent:
		d.decodeEvent(id, p, value)
	case groupAddress:
		d.decodeAddress(p, value)
	case groupNumber:
		number := CleanForImport(Unescape(value))
		if number == "" {
			return nil
		}
		ts, label := parseTypes(contact.GroupNumber, p.types)
		d.rec.Numbers = append(d.rec.Numbers, contact.Number{Type: ts, Label: label, IsDefault: p.pref, Number: number})
	case groupEmail:
		addr := strings.TrimSpace(Unescape(value))
		if addr == "" {
			return nil
		}
		ts, label := parseTypes(contact.GroupEmail, p.types)
		d.rec.Emails = append(d.rec.Emails, contact.Email{Type: ts, Label: label, IsDefault: p.pref, Address: addr})
	case groupCompany:
		return d.decodeCompany(id, p, value)
	case groupNote:
		if s := Unescape(value); strings.TrimSpace(s) != "" {
			d.rec.Notes = append(d.rec.Notes, contact.Note{Text: s})
		}
	case groupRevision:
		if t, ok := parseRevision(value); ok {
			d.rec.Revision = &t
		} else {
			log().Debug().Str("value", value).Msg("unparseable REV, skipping")
		}
	case groupUID:
		if s := strings.TrimSpace(value); s != "" {
			d.rec.UID = &s
		}
	case groupURL:
		u := strings.TrimSpace(Unescape(value))
		if u == "" {
			return nil
		}
		ts, label := parseTypes(contact.GroupURL, p.types)
		d.rec.URLs = append(d.rec.URLs, contact.URL{Type: ts, Label: label, URL: u})
	case groupMessenger:
		d.decodeMessenger(id, p, value)
	case groupRelationship:
		name := strings.TrimSpace(Unescape(value))
		if name == "" {
			return nil
		}
		ts, label := parseTypes(contact.GroupRelationship, p.types)
		d.rec.Relationships = append(d.rec.Relationships, contact.Relationship{Type: ts, Label: label, Name: name})
	}
	return nil
}

func (d *decoder) name() *contact.Name {
	if d.rec.Name == nil {
		d.rec.Name = &contact.Name{}
	}
	return d.rec.Name
}

func (d *decoder) company() *contact.Company {
	if d.rec.Company == nil {
		d.rec.Company = &contact.Company{}
	}
	return d.rec.Company
}

func (d *decoder) decodeName(id propID, value string) {
	switch id {
	case propN:
		c := components(value, 5)
		empty := true
		for _, s := range c {
			if strings.TrimSpace(s) != "" {
				empty = false
			}
		}
		if empty {
			return
		}
		n := d.name()
		n.Last, n.First, n.Middle, n.Prefix, n.Suffix = c[0], c[1], c[2], c[3], c[4]
	case propFN:
		d.fn = strings.TrimSpace(Unescape(value))
	case propPhoneticFirst:
		if s := Unescape(value); s != "" {
			d.name().PhoneticFirst = s
		}
	case propPhoneticMiddle:
		if s := Unescape(value); s != "" {
			d.name().PhoneticMiddle = s
		}
	case propPhoneticLast:
		if s := Unescape(value); s != "" {
			d.name().PhoneticLast = s
		}
	}
}

func (d *decoder) decodeAddress(p params, value string) {
	c := components(value, 7)
	addr := contact.Address{
		POBox: c[0], Extended: c[1], Street: c[2], Locality: c[3],
		Region: c[4], PostalCode: c[5], Country: c[6],
	}
	if addr.Empty() {
		return
	}
	addr.Type, addr.Label = parseTypes(contact.GroupAddress, p.types)
	addr.IsDefault = p.pref
	d.rec.Addresses = append(d.rec.Addresses, addr)
}

func (d *decoder) decodeEvent(id propID, p params, value string) {
	date, ok := parseDate(value)
	if !ok {
		log().Debug().Str("tag", id.tag()).Str("value", value).Msg("unparseable date, skipping")
		return
	}
	ev := contact.Event{Date: date}
	switch id {
	case propBirthday:
		ev.Type = contact.EventBirth
	case propAnniversary:
		ev.Type = contact.EventAnniversary
	default:
		ev.Type, ev.Label = parseTypes(contact.GroupEvent, p.types)
	}
	d.rec.Events = append(d.rec.Events, ev)
}

func (d *decoder) decodeCompany(id propID, p params, value string) error {
	if id == propLogo {
		path, err := d.decodeImage(id, p, value)
		if err != nil || path == "" {
			return err
		}
		d.company().Logo = path
		return nil
	}

	if id == propOrg {
		c := components(value, 2)
		if strings.TrimSpace(c[0]) == "" && strings.TrimSpace(c[1]) == "" {
			return nil
		}
		co := d.company()
		co.Name, co.Department = c[0], c[1]
		return nil
	}

	s := Unescape(value)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	co := d.company()
	switch id {
	case propTitle:
		co.JobTitle = s
	case propRole:
		co.Role = s
	case propCompanyLocation:
		co.Location = s
	case propCompanyDescription:
		co.Description = s
	case propCompanyPhoneticName:
		co.PhoneticName = s
	case propCompanyAssistantName:
		co.AssistantName = s
	}
	return nil
}

var messengerTags = map[propID]contact.TypeSet{
	propMSN:           contact.MessengerMSN,
	propYahoo:         contact.MessengerYahoo,
	propICQ:           contact.MessengerICQ,
	propAIM:           contact.MessengerAIM,
	propJabber:        contact.MessengerJabber,
	propSkypeUsername: contact.MessengerSkype,
	propSkype:         contact.MessengerSkype,
	propQQ:            contact.MessengerQQ,
	propGoogleTalk:    contact.MessengerGoogle,
}

func (d *decoder) decodeMessenger(id propID, p params, value string) {
	handle := strings.TrimSpace(Unescape(value))
	if handle == "" {
		return
	}
	m := contact.Messenger{Handle: handle}
	if t, ok := messengerTags[id]; ok {
		m.Type = t
	} else {
		m.Type, m.Label = parseTypes(contact.GroupMessenger, p.types)
	}
	d.rec.Messengers = append(d.rec.Messengers, m)
}

// decodeImage stores an inline base64 PHOTO or LOGO and returns the file path.
// URI values and undecodable data are skipped.
func (d *decoder) decodeImage(id propID, p params, value string) (string, error) {
	if d.codec.opts.ImageDir == "" {
		return "", nil
	}
	if p.encoding != encodingBase64 && d.version == V30 {
		log().Debug().Str("tag", id.tag()).Msg("non-inline image, skipping")
		return "", nil
	}
	data, err := base64.StdEncoding.DecodeString(stripSpace(value))
	if err != nil || len(data) == 0 {
		log().Debug().Str("tag", id.tag()).Err(err).Msg("bad base64 image, skipping")
		return "", nil
	}
	path, err := d.codec.saveImage(data)
	if err != nil {
		return "", err
	}
	d.written = append(d.written, path)
	return path, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
}

// parseDate extracts up to eight digits as a YYYYMMDD integer.
func parseDate(value string) (int, bool) {
	var digits []byte
	for i := 0; i < len(value) && len(digits) < 8; i++ {
		if c := value[i]; c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}
	if len(digits) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(string(digits))
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

var revisionLayouts = []string{
	"2006-01-02T15:04:05Z",
	"20060102T150405Z",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"20060102T150405",
	"2006-01-02",
	"20060102",
}

func parseRevision(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range revisionLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// finish applies the FN fallback and derives the display name.
func (d *decoder) finish() {
	if d.fn != "" && (d.rec.Name == nil || (d.rec.Name.First == "" && d.rec.Name.Last == "")) {
		d.name().First = d.fn
	}
	d.rec.DisplayName = contact.DeriveDisplayName(d.rec)
}
