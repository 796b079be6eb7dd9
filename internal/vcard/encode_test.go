package vcard

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/contact"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
)

func encode(t *testing.T, rec *contact.Record) string {
	t.Helper()
	out, err := New(Options{}).Encode(context.Background(), rec)
	require.NoError(t, err)
	return out
}

func TestEncode_NilRecord(t *testing.T) {
	_, err := New(Options{}).Encode(context.Background(), nil)
	require.True(t, errors.Is(err, errors.ErrInvalidParameter))
}

func TestEncode_Minimal(t *testing.T) {
	out := encode(t, &contact.Record{
		DisplayName: "Minsu Kim",
		Name:        &contact.Name{First: "Minsu", Last: "Kim"},
		Numbers:     []contact.Number{{Type: contact.NumberCell, IsDefault: true, Number: "010-1234-5678"}},
	})
	require.Equal(t, "BEGIN:VCARD\r\n"+
		"VERSION:3.0\r\n"+
		"FN:Minsu Kim\r\n"+
		"N:Kim;Minsu;;;\r\n"+
		"TEL;TYPE=CELL;PREF:01012345678\r\n"+
		"END:VCARD\r\n", out)
}

func TestEncode_DerivesFN(t *testing.T) {
	out := encode(t, &contact.Record{Company: &contact.Company{Name: "Acme"}})
	require.Contains(t, out, "\r\nFN:Acme\r\n")
	require.Contains(t, out, "\r\nORG:Acme\r\n")
}

func TestEncode_TypesAndWireNames(t *testing.T) {
	out := encode(t, &contact.Record{
		DisplayName: "Types",
		Numbers: []contact.Number{
			{Type: contact.Custom, Label: "bad label", Number: "1"},
			{Type: contact.NumberCompanyMain, Number: "2"},
			{Type: contact.NumberHome | contact.NumberFax, Number: "3"},
			{Type: contact.NumberCell, Number: "---"},
		},
		Emails: []contact.Email{
			{Type: contact.EmailMobile, Address: "m@example.com"},
			{Type: contact.Custom, Label: "School", Address: "s@example.com"},
		},
		Messengers: []contact.Messenger{
			{Type: contact.MessengerSkype, Handle: "bob"},
			{Type: contact.MessengerFacebook, Handle: "fb"},
			{Type: contact.Custom, Label: "Line", Handle: "l"},
		},
		Relationships: []contact.Relationship{
			{Type: contact.RelationDomesticPartner, Name: "Jo"},
		},
	})

	for _, line := range []string{
		"TEL:1",
		"TEL;TYPE=X-COMPANY-MAIN:2",
		"TEL;TYPE=HOME,FAX:3",
		"EMAIL;TYPE=CELL:m@example.com",
		"EMAIL;TYPE=X-School:s@example.com",
		"X-SKYPE-USERNAME:bob",
		"X-TIZEN-MESSENGER;TYPE=FACEBOOK:fb",
		"X-TIZEN-MESSENGER;TYPE=X-Line:l",
		"X-TIZEN-RELATIONSHIP;TYPE=DOMESTIC_PARTNER:Jo",
	} {
		require.Contains(t, out, "\r\n"+line+"\r\n")
	}
	require.Equal(t, 3, strings.Count(out, "\r\nTEL"))
}

func TestEncode_EventsAndRevision(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	rev := time.Date(2024, 3, 1, 19, 20, 30, 0, seoul)
	uid := "abc\r\n-123"

	out := encode(t, &contact.Record{
		DisplayName: "Dates",
		Events: []contact.Event{
			{Type: contact.EventBirth, Date: 19900517},
			{Type: contact.EventAnniversary, Date: 20150620},
			{Type: contact.Custom, Label: "Graduation", Date: 20120224},
			{Type: contact.EventBirth, Date: 0},
		},
		UID:      &uid,
		Revision: &rev,
	})

	require.Contains(t, out, "\r\nBDAY:1990-05-17\r\n")
	require.Contains(t, out, "\r\nANNIVERSARY:2015-06-20\r\n")
	require.Contains(t, out, "\r\nX-TIZEN-EVENT;TYPE=X-Graduation:2012-02-24\r\n")
	require.Equal(t, 1, strings.Count(out, "BDAY"))
	require.Contains(t, out, "\r\nUID:abc-123\r\n")
	require.Contains(t, out, "\r\nREV:2024-03-01T10:20:30Z\r\n")
}

func TestEncode_Escaping(t *testing.T) {
	out := encode(t, &contact.Record{
		DisplayName: "A; B",
		Name:        &contact.Name{Last: "O;Brien", First: "Sean"},
		Nicknames:   []contact.Nickname{{Name: "Bob"}, {Name: "Bobby, Jr"}},
		Notes:       []contact.Note{{Text: "line one\r\nline: two"}},
	})
	require.Contains(t, out, "\r\nFN:A\\; B\r\n")
	require.Contains(t, out, "\r\nN:O\\;Brien;Sean;;;\r\n")
	require.Contains(t, out, "\r\nNICKNAME:Bob,Bobby\\, Jr\r\n")
	require.Contains(t, out, "\r\nNOTE:line one\\nline\\: two\r\n")
}

func TestEncode_PropertyOrder(t *testing.T) {
	uid := "u-1"
	rev := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	out := encode(t, &contact.Record{
		DisplayName: "Order",
		Name:        &contact.Name{First: "Or", Last: "Der"},
		Nicknames:   []contact.Nickname{{Name: "O"}},
		Events:      []contact.Event{{Type: contact.EventBirth, Date: 20000101}},
		Addresses:   []contact.Address{{Type: contact.AddressHome, Street: "1 Main"}},
		Numbers:     []contact.Number{{Number: "1"}},
		Emails:      []contact.Email{{Address: "o@example.com"}},
		Company:     &contact.Company{Name: "Acme", JobTitle: "Dev"},
		Notes:       []contact.Note{{Text: "n"}},
		URLs:        []contact.URL{{URL: "http://example.com"}},
		Messengers:  []contact.Messenger{{Type: contact.MessengerQQ, Handle: "q"}},
		Relationships: []contact.Relationship{
			{Type: contact.RelationFriend, Name: "f"},
		},
		UID:      &uid,
		Revision: &rev,
	})

	order := []string{
		"\r\nFN:", "\r\nN:", "\r\nNICKNAME:", "\r\nBDAY:", "\r\nADR", "\r\nTEL", "\r\nEMAIL",
		"\r\nORG:", "\r\nTITLE:", "\r\nNOTE:", "\r\nURL", "\r\nX-QQ:", "\r\nX-TIZEN-RELATIONSHIP",
		"\r\nUID:", "\r\nREV:", "\r\nEND:VCARD",
	}
	last := -1
	for _, tag := range order {
		i := strings.Index(out, tag)
		require.Greater(t, i, last, "%q out of order in\n%s", tag, out)
		last = i
	}
}

func TestEncode_FoldsLongLines(t *testing.T) {
	out := encode(t, &contact.Record{
		DisplayName: strings.Repeat("김민수", 40),
		Notes:       []contact.Note{{Text: strings.Repeat("The quick brown fox. ", 20)}},
	})
	for _, line := range physicalLines(out) {
		require.LessOrEqual(t, lineWidth(line), maxLineWidth, "line %q", line)
	}

	recs, err := New(Options{}).DecodeAll(context.Background(), out)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, strings.Repeat("The quick brown fox. ", 20), recs[0].Notes[0].Text)
}

func TestEncode_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{}).Encode(ctx, &contact.Record{DisplayName: "x"})
	require.True(t, errors.Is(err, errors.ErrCancelled))
}

func TestEncodeAggregate(t *testing.T) {
	c := New(Options{})
	ctx := context.Background()

	_, err := c.EncodeAggregate(ctx, nil)
	require.True(t, errors.Is(err, errors.ErrInvalidParameter))
	_, err = c.EncodeAggregate(ctx, []*contact.Record{{DisplayName: "a"}, nil})
	require.True(t, errors.Is(err, errors.ErrInvalidParameter))

	early := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	out, err := c.EncodeAggregate(ctx, []*contact.Record{
		{
			DisplayName: "Minsu Kim",
			Name:        &contact.Name{First: "Minsu", Last: "Kim"},
			Numbers:     []contact.Number{{Type: contact.NumberCell, Number: "1"}},
			Revision:    &early,
		},
		{
			DisplayName: "Work Minsu",
			Name:        &contact.Name{First: "Ignored"},
			Company:     &contact.Company{Name: "Acme"},
			Numbers:     []contact.Number{{Type: contact.NumberWork, Number: "2"}},
			Emails:      []contact.Email{{Address: "m@acme.example"}},
			Revision:    &late,
		},
	})
	require.NoError(t, err)

	require.Equal(t, 1, strings.Count(out, "BEGIN:VCARD"))
	require.Contains(t, out, "\r\nFN:Minsu Kim\r\n")
	require.Contains(t, out, "\r\nN:Kim;Minsu;;;\r\n")
	require.Contains(t, out, "\r\nORG:Acme\r\n")
	require.Contains(t, out, "\r\nTEL;TYPE=CELL:1\r\nTEL;TYPE=WORK:2\r\n")
	require.Contains(t, out, "\r\nEMAIL:m@acme.example\r\n")
	require.Contains(t, out, "\r\nREV:2024-06-01T00:00:00Z\r\n")
	require.NotContains(t, out, "Ignored")
}
