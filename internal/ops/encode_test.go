package ops

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/contact"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/vcard"
)

func minsu() *contact.Record {
	return &contact.Record{
		DisplayName: "Minsu Kim",
		Name:        &contact.Name{First: "Minsu", Last: "Kim"},
		Numbers:     []contact.Number{{Type: contact.NumberCell, IsDefault: true, Number: "01012345678"}},
	}
}

func TestEncode(t *testing.T) {
	codec := vcard.New(vcard.Options{})

	out, err := Encode(context.Background(), codec, EncodeInput{Records: []*contact.Record{minsu()}})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := "BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Minsu Kim\r\nN:Kim;Minsu;;;\r\nTEL;TYPE=CELL;PREF:01012345678\r\nEND:VCARD\r\n"
	if out.VCard != want || out.Count != 1 {
		t.Errorf("Encode = %q (%d), want %q", out.VCard, out.Count, want)
	}

	second := &contact.Record{DisplayName: "Other"}
	out, err = Encode(context.Background(), codec, EncodeInput{Records: []*contact.Record{minsu(), second}})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if out.Count != 2 || strings.Count(out.VCard, "END:VCARD") != 2 {
		t.Errorf("Encode(two) = %q", out.VCard)
	}

	out, err = Encode(context.Background(), codec, EncodeInput{Records: []*contact.Record{minsu(), second}, Aggregate: true})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if out.Count != 1 || strings.Count(out.VCard, "END:VCARD") != 1 {
		t.Errorf("Encode(aggregate) = %q", out.VCard)
	}
}

func TestEncode_Errors(t *testing.T) {
	codec := vcard.New(vcard.Options{})

	if _, err := Encode(context.Background(), codec, EncodeInput{}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("no records error = %v, want INVALID_REQUEST", err)
	}
	if _, err := Encode(context.Background(), codec, EncodeInput{Records: []*contact.Record{nil}}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("nil record error = %v, want INVALID_REQUEST", err)
	}
}

func TestEncode_ImageRoot(t *testing.T) {
	codec := vcard.New(vcard.Options{})
	root := t.TempDir()
	inside := filepath.Join(root, "face.png")
	if err := os.WriteFile(inside, []byte("not really a png"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	rec := minsu()
	rec.Photos = []contact.Photo{{Path: inside, IsDefault: true}}
	out, err := Encode(context.Background(), codec, EncodeInput{Records: []*contact.Record{rec}, ImageRoot: root})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(out.VCard, "PHOTO;") {
		t.Errorf("photo not embedded: %q", out.VCard)
	}

	for _, p := range []string{"/etc/passwd", filepath.Join(root, "sub", "x.png"), filepath.Join(root, "..", "x.png")} {
		rec.Photos = []contact.Photo{{Path: p}}
		if _, err := Encode(context.Background(), codec, EncodeInput{Records: []*contact.Record{rec}, ImageRoot: root}); !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("Encode(photo %q) error = %v, want INVALID_REQUEST", p, err)
		}
	}

	rec.Photos = nil
	rec.Company = &contact.Company{Name: "Acme", Logo: "/etc/hosts"}
	if _, err := Encode(context.Background(), codec, EncodeInput{Records: []*contact.Record{rec}, ImageRoot: root}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Encode(logo outside root) error = %v, want INVALID_REQUEST", err)
	}
}
