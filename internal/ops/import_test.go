package ops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/db"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
)

func TestImport_HappyPath(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile(t, "people.vcf",
		vcardText("N:Kim;Minsu;;;", "TEL;TYPE=CELL;PREF:010-1234-5678", "UID:minsu-1")+
			vcardText("FN:Jiwoo Park", "EMAIL;TYPE=WORK:jiwoo@example.com", "PHOTO;ENCODING=b;TYPE=PNG:"+pngBase64(t)))

	out, err := Import(context.Background(), env.db, env.cfg, env.codec, ImportInput{Path: path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if out.Imported != 2 || len(out.IDs) != 2 {
		t.Fatalf("Imported = %d, IDs = %v; want 2", out.Imported, out.IDs)
	}

	first, err := db.GetByID(env.db, out.IDs[0])
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if first.DisplayName != "Minsu Kim" {
		t.Errorf("DisplayName = %q, want Minsu Kim", first.DisplayName)
	}
	if first.UID == nil || *first.UID != "minsu-1" {
		t.Errorf("UID = %v, want minsu-1", first.UID)
	}
	if first.Record.Numbers[0].Number != "01012345678" {
		t.Errorf("Number = %q", first.Record.Numbers[0].Number)
	}

	second, err := db.GetByID(env.db, out.IDs[1])
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if second.UID == nil {
		t.Error("UID not generated for record without one")
	}
	if len(second.Record.Photos) != 1 {
		t.Fatalf("Photos = %v, want 1", second.Record.Photos)
	}
	if filepath.Dir(second.Record.Photos[0].Path) != env.images {
		t.Errorf("photo stored at %q, want under %q", second.Record.Photos[0].Path, env.images)
	}
	if _, err := os.Stat(second.Record.Photos[0].Path); err != nil {
		t.Errorf("photo file missing: %v", err)
	}
}

func TestImport_Empty(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile(t, "empty.vcf", "")

	out, err := Import(context.Background(), env.db, env.cfg, env.codec, ImportInput{Path: path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if out.Imported != 0 || out.IDs == nil {
		t.Errorf("Import(empty) = %+v, want 0 and non-nil IDs", out)
	}
}

func TestImport_RollsBackOnFailure(t *testing.T) {
	env := newTestEnv(t)

	// Reject one contact at the storage layer so the failure lands mid-file.
	_, err := env.db.Exec(`
		CREATE TRIGGER reject_bad BEFORE INSERT ON contacts
		WHEN NEW.display_name = 'Bad'
		BEGIN SELECT RAISE(ABORT, 'rejected'); END;
	`)
	if err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	path := env.writeFile(t, "mixed.vcf",
		vcardText("FN:Good", "PHOTO;ENCODING=b;TYPE=PNG:"+pngBase64(t))+
			vcardText("FN:Bad"))

	_, err = Import(context.Background(), env.db, env.cfg, env.codec, ImportInput{Path: path})
	if err == nil {
		t.Fatal("Import succeeded, want error")
	}

	n, err := db.Count(env.db)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Count = %d after failed import, want 0", n)
	}
	if files := env.imageFiles(t); len(files) != 0 {
		t.Errorf("images left behind: %v", files)
	}
}

func TestImport_InvalidFormat(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile(t, "junk.vcf", "this is not a vcard\n")

	_, err := Import(context.Background(), env.db, env.cfg, env.codec, ImportInput{Path: path})
	if !errors.Is(err, errors.ErrInvalidFormat) {
		t.Errorf("Import(junk) error = %v, want INVALID_FORMAT", err)
	}
}

func TestImport_PathErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		path string
		code errors.ErrorCode
	}{
		{"empty", "", errors.ErrInvalidRequest},
		{"wrong extension", env.writeFile(t, "people.txt", vcardText("FN:x")), errors.ErrInvalidRequest},
		{"missing", filepath.Join(env.dir, "missing.vcf"), errors.ErrFileNotFound},
		{"outside allowed dirs", filepath.Join(t.TempDir(), "elsewhere.vcf"), errors.ErrInvalidRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Import(ctx, env.db, env.cfg, env.codec, ImportInput{Path: tc.path})
			if !errors.Is(err, tc.code) {
				t.Errorf("Import error = %v, want %s", err, tc.code)
			}
		})
	}
}

func TestImport_RejectsSymlink(t *testing.T) {
	env := newTestEnv(t)
	target := env.writeFile(t, "real.vcf", vcardText("FN:x"))
	link := filepath.Join(env.dir, "link.vcf")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	_, err := Import(context.Background(), env.db, env.cfg, env.codec, ImportInput{Path: link})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Import(symlink) error = %v, want INVALID_REQUEST", err)
	}
}

func TestImport_Cancelled(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile(t, "one.vcf", vcardText("FN:x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Import(ctx, env.db, env.cfg, env.codec, ImportInput{Path: path}); err == nil {
		t.Error("Import with cancelled context succeeded")
	}
}
