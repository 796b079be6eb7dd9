package vcard

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/contact"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
)

const revisionLayout = "2006-01-02T15:04:05Z"

// encoder accumulates unfolded content lines.
type encoder struct {
	ctx   context.Context
	codec *Codec
	b     strings.Builder
}

// prop appends one content line. value must already be escaped.
func (e *encoder) prop(tag, params, value string) {
	e.b.WriteString(tag)
	e.b.WriteString(params)
	e.b.WriteByte(':')
	e.b.WriteString(value)
	e.b.WriteString("\r\n")
}

func (c *Codec) encode(ctx context.Context, rec *contact.Record) (string, error) {
	e := &encoder{ctx: ctx, codec: c}
	e.b.Grow(512)

	e.b.WriteString("BEGIN:VCARD\r\nVERSION:3.0\r\n")
	e.displayName(rec)
	e.name(rec.Name)
	e.nicknames(rec.Nicknames)
	if err := e.photos(rec.Photos); err != nil {
		return "", err
	}
	e.events(rec.Events)
	e.addresses(rec.Addresses)
	e.numbers(rec.Numbers)
	e.emails(rec.Emails)
	if err := e.company(rec.Company); err != nil {
		return "", err
	}
	for _, n := range rec.Notes {
		if n.Text != "" {
			e.prop("NOTE", "", Escape(n.Text))
		}
	}
	e.urls(rec.URLs)
	e.messengers(rec.Messengers)
	e.relationships(rec.Relationships)
	if rec.UID != nil && *rec.UID != "" {
		e.prop("UID", "", strings.NewReplacer("\r", "", "\n", "").Replace(*rec.UID))
	}
	if rec.Revision != nil {
		e.prop("REV", "", rec.Revision.UTC().Format(revisionLayout))
	}
	e.b.WriteString("END:VCARD\r\n")

	if ctx.Err() != nil {
		return "", errors.NewCancelled("encode")
	}
	return Fold(e.b.String()), nil
}

func (e *encoder) displayName(rec *contact.Record) {
	fn := rec.DisplayName
	if fn == "" {
		fn = contact.DeriveDisplayName(rec)
	}
	if fn != "" {
		e.prop("FN", "", Escape(fn))
	}
}

func (e *encoder) name(n *contact.Name) {
	if n == nil {
		return
	}
	if n.Last != "" || n.First != "" || n.Middle != "" || n.Prefix != "" || n.Suffix != "" {
		e.prop("N", "", strings.Join([]string{
			Escape(n.Last), Escape(n.First), Escape(n.Middle), Escape(n.Prefix), Escape(n.Suffix),
		}, ";"))
	}
	if n.PhoneticFirst != "" {
		e.prop(propPhoneticFirst.tag(), "", Escape(n.PhoneticFirst))
	}
	if n.PhoneticMiddle != "" {
		e.prop(propPhoneticMiddle.tag(), "", Escape(n.PhoneticMiddle))
	}
	if n.PhoneticLast != "" {
		e.prop(propPhoneticLast.tag(), "", Escape(n.PhoneticLast))
	}
}

func (e *encoder) nicknames(list []contact.Nickname) {
	var names []string
	for _, n := range list {
		if n.Name != "" {
			names = append(names, Escape(n.Name))
		}
	}
	if len(names) > 0 {
		e.prop("NICKNAME", "", strings.Join(names, ","))
	}
}

func (e *encoder) photos(list []contact.Photo) error {
	for _, p := range list {
		if p.Path == "" {
			continue
		}
		if err := e.image("PHOTO", p.Path); err != nil {
			return err
		}
	}
	return nil
}

// image embeds the file at path as base64.
func (e *encoder) image(tag, path string) error {
	data, ok, err := e.codec.loadImage(e.ctx, path)
	if err != nil || !ok {
		return err
	}
	kind, _ := imageKind(data)
	e.prop(tag, ";ENCODING=BASE64;TYPE="+kind, base64.StdEncoding.EncodeToString(data))
	return nil
}

func formatDate(date int) string {
	return fmt.Sprintf("%04d-%02d-%02d", date/10000, date/100%100, date%100)
}

func (e *encoder) events(list []contact.Event) {
	for _, ev := range list {
		if ev.Date <= 0 {
			continue
		}
		switch ev.Type {
		case contact.EventBirth:
			e.prop("BDAY", "", formatDate(ev.Date))
		case contact.EventAnniversary:
			e.prop("ANNIVERSARY", "", formatDate(ev.Date))
		default:
			e.prop(propEvent.tag(), formatTypes(contact.GroupEvent, ev.Type, ev.Label), formatDate(ev.Date))
		}
	}
}

func pref(isDefault bool) string {
	if isDefault {
		return ";PREF"
	}
	return ""
}

func (e *encoder) addresses(list []contact.Address) {
	for _, a := range list {
		if a.Empty() {
			continue
		}
		parts := a.Components()
		for i := range parts {
			parts[i] = Escape(parts[i])
		}
		e.prop("ADR", formatTypes(contact.GroupAddress, a.Type, a.Label)+pref(a.IsDefault), strings.Join(parts, ";"))
	}
}

func (e *encoder) numbers(list []contact.Number) {
	for _, n := range list {
		number := CleanForExport(n.Number)
		if number == "" {
			continue
		}
		e.prop("TEL", formatTypes(contact.GroupNumber, n.Type, n.Label)+pref(n.IsDefault), number)
	}
}

func (e *encoder) emails(list []contact.Email) {
	for _, m := range list {
		if m.Address == "" {
			continue
		}
		e.prop("EMAIL", formatTypes(contact.GroupEmail, m.Type, m.Label)+pref(m.IsDefault), Escape(m.Address))
	}
}

func (e *encoder) company(c *contact.Company) error {
	if c == nil {
		return nil
	}
	if c.Name != "" || c.Department != "" {
		value := Escape(c.Name)
		if c.Department != "" {
			value += ";" + Escape(c.Department)
		}
		e.prop("ORG", "", value)
	}
	if c.JobTitle != "" {
		e.prop("TITLE", "", Escape(c.JobTitle))
	}
	if c.Role != "" {
		e.prop("ROLE", "", Escape(c.Role))
	}
	if c.Logo != "" {
		if err := e.image("LOGO", c.Logo); err != nil {
			return err
		}
	}
	for _, f := range []struct {
		id    propID
		value string
	}{
		{propCompanyLocation, c.Location},
		{propCompanyDescription, c.Description},
		{propCompanyPhoneticName, c.PhoneticName},
		{propCompanyAssistantName, c.AssistantName},
	} {
		if f.value != "" {
			e.prop(f.id.tag(), "", Escape(f.value))
		}
	}
	return nil
}

func (e *encoder) urls(list []contact.URL) {
	for _, u := range list {
		if u.URL == "" {
			continue
		}
		e.prop("URL", formatTypes(contact.GroupURL, u.Type, u.Label), Escape(u.URL))
	}
}

var messengerWire = map[contact.TypeSet]propID{
	contact.MessengerAIM:    propAIM,
	contact.MessengerYahoo:  propYahoo,
	contact.MessengerSkype:  propSkypeUsername,
	contact.MessengerQQ:     propQQ,
	contact.MessengerGoogle: propGoogleTalk,
	contact.MessengerICQ:    propICQ,
	contact.MessengerJabber: propJabber,
	contact.MessengerMSN:    propMSN,
}

func (e *encoder) messengers(list []contact.Messenger) {
	for _, m := range list {
		if m.Handle == "" {
			continue
		}
		if id, ok := messengerWire[m.Type]; ok {
			e.prop(id.tag(), "", Escape(m.Handle))
			continue
		}
		e.prop(propMessenger.tag(), formatTypes(contact.GroupMessenger, m.Type, m.Label), Escape(m.Handle))
	}
}

func (e *encoder) relationships(list []contact.Relationship) {
	for _, r := range list {
		if r.Name == "" {
			continue
		}
		e.prop(propRelationship.tag(), formatTypes(contact.GroupRelationship, r.Type, r.Label), Escape(r.Name))
	}
}
