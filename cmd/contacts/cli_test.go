package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/config"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/db"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/ops"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/vcard"
)

// setupTestEnv creates a temporary store for testing.
func setupTestEnv(t *testing.T) (*env, string) {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true
	imageDir := cfg.ImagePath(tmpDir)
	return &env{
		db:       database,
		cfg:      cfg,
		codec:    vcard.New(vcard.Options{ImageDir: imageDir}),
		imageDir: imageDir,
	}, tmpDir
}

func card(lines ...string) string {
	return "BEGIN:VCARD\r\nVERSION:3.0\r\n" + strings.Join(lines, "\r\n") + "\r\nEND:VCARD\r\n"
}

// run executes args against a fresh app, feeding stdin when non-empty, and
// returns what the command wrote to stdout.
func run(t *testing.T, e *env, stdin string, args ...string) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	if stdin != "" {
		oldStdin := os.Stdin
		stdinR, stdinW, err := os.Pipe()
		if err != nil {
			t.Fatalf("pipe: %v", err)
		}
		os.Stdin = stdinR
		go func() {
			_, _ = stdinW.WriteString(stdin)
			stdinW.Close()
		}()
		defer func() { os.Stdin = oldStdin }()
	}

	runErr := newCLIApp(e).Run(append([]string{"contacts"}, args...))

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout
	return buf.String(), runErr
}

func runJSON(t *testing.T, e *env, stdin string, out any, args ...string) {
	t.Helper()
	text, err := run(t, e, stdin, args...)
	if err != nil {
		t.Fatalf("%s failed: %v", args[0], err)
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, text)
	}
}

func importCards(t *testing.T, e *env, dir string, cards ...string) []string {
	t.Helper()
	path := filepath.Join(dir, "in.vcf")
	if err := os.WriteFile(path, []byte(strings.Join(cards, "")), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	var output ops.ImportOutput
	runJSON(t, e, "", &output, "import", path)
	return output.IDs
}

func TestCLIImportFetch(t *testing.T) {
	e, dir := setupTestEnv(t)
	ids := importCards(t, e, dir,
		card("N:Kim;Minsu;;;", "TEL;TYPE=CELL:010-1234-5678"),
		card("FN:Jiwoo Park"),
	)
	if len(ids) != 2 {
		t.Fatalf("imported %d contacts, want 2", len(ids))
	}

	var fetched ops.FetchOutput
	runJSON(t, e, "", &fetched, "fetch", "--vcard", ids[0])
	if fetched.DisplayName != "Minsu Kim" {
		t.Errorf("display_name = %q, want Minsu Kim", fetched.DisplayName)
	}
	if len(fetched.Record.Numbers) != 1 || fetched.Record.Numbers[0].Number != "01012345678" {
		t.Errorf("numbers = %+v", fetched.Record.Numbers)
	}
	if !strings.Contains(fetched.VCard, "TEL;TYPE=CELL") || !strings.Contains(fetched.VCard, ":01012345678\r\n") {
		t.Errorf("vcard = %q", fetched.VCard)
	}
}

func TestCLIListSearch(t *testing.T) {
	e, dir := setupTestEnv(t)
	importCards(t, e, dir, card("FN:Minsu Kim"), card("FN:Jiwoo Kim"), card("FN:Park"))

	var list ops.ListOutput
	runJSON(t, e, "", &list, "list", "--limit", "2")
	if len(list.Items) != 2 || !list.Pagination.HasMore || list.Pagination.Total != 3 {
		t.Errorf("list = %+v", list)
	}
	if list.Items[0].DisplayName != "Jiwoo Kim" {
		t.Errorf("first item = %q, want Jiwoo Kim", list.Items[0].DisplayName)
	}

	var search ops.SearchOutput
	runJSON(t, e, "", &search, "search", "KIM")
	if search.Pagination.Total != 2 {
		t.Errorf("search total = %d, want 2", search.Pagination.Total)
	}
}

func TestCLIExportCount(t *testing.T) {
	e, dir := setupTestEnv(t)
	ids := importCards(t, e, dir, card("FN:A"), card("FN:B"), card("FN:C"))

	path := filepath.Join(dir, "out.vcf")
	var exported ops.ExportOutput
	runJSON(t, e, "", &exported, "export", "--path", path, ids[0], ids[2])
	if exported.Count != 2 || exported.Path != path {
		t.Errorf("export = %+v", exported)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := strings.Count(string(data), "BEGIN:VCARD"); got != 2 {
		t.Errorf("exported file holds %d cards, want 2", got)
	}

	var counted ops.CountOutput
	runJSON(t, e, "", &counted, "count", path)
	if counted.Count != 2 {
		t.Errorf("count = %d, want 2", counted.Count)
	}
}

func TestCLIUpdate(t *testing.T) {
	e, dir := setupTestEnv(t)
	ids := importCards(t, e, dir, card("FN:Old Name", "UID:keep-me"))

	var updated ops.UpdateOutput
	runJSON(t, e, card("FN:New Name"), &updated, "update", ids[0])
	if updated.DisplayName != "New Name" {
		t.Errorf("display_name = %q, want New Name", updated.DisplayName)
	}
	if updated.UID == nil || *updated.UID != "keep-me" {
		t.Errorf("uid = %v, want keep-me", updated.UID)
	}
}

func TestCLILinkDelete(t *testing.T) {
	e, dir := setupTestEnv(t)
	ids := importCards(t, e, dir, card("FN:Home"), card("FN:Work"))

	var linked ops.LinkOutput
	runJSON(t, e, "", &linked, "link", ids[0], ids[1])
	if linked.PersonID != ids[0] {
		t.Errorf("person_id = %q, want %q", linked.PersonID, ids[0])
	}

	var deleted ops.DeleteOutput
	runJSON(t, e, "", &deleted, "delete", ids[1])
	if !deleted.Deleted || deleted.ID != ids[1] {
		t.Errorf("delete = %+v", deleted)
	}
	if n, _ := db.Count(e.db); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestCLIDecodeEncode(t *testing.T) {
	e, _ := setupTestEnv(t)

	var decoded ops.DecodeOutput
	runJSON(t, e, card("N:Kim;Minsu;;;", "EMAIL;TYPE=WORK:minsu@example.com"), &decoded, "decode")
	if decoded.Count != 1 {
		t.Fatalf("decode count = %d, want 1", decoded.Count)
	}

	records, err := json.Marshal(decoded.Records)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	text, err := run(t, e, string(records), "encode")
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if !strings.HasPrefix(text, "BEGIN:VCARD\r\nVERSION:3.0\r\n") {
		t.Errorf("encode output = %q", text)
	}
	if !strings.Contains(text, "EMAIL;TYPE=WORK:minsu@example.com\r\n") {
		t.Errorf("encode output missing EMAIL: %q", text)
	}
}

func TestCLIErrorHandling(t *testing.T) {
	e, _ := setupTestEnv(t)

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"fetch not found", "", []string{"fetch", "nonexistent"}, "[NOT_FOUND]"},
		{"delete not found", "", []string{"delete", "nonexistent"}, "[NOT_FOUND]"},
		{"fetch without id", "", []string{"fetch"}, "[INVALID_REQUEST]"},
		{"import wrong extension", "", []string{"import", "/tmp/contacts.txt"}, "[INVALID_REQUEST]"},
		{"decode junk", "not a vcard", []string{"decode"}, "[INVALID_FORMAT]"},
		{"encode bad json", "{", []string{"encode"}, "[INVALID_REQUEST]"},
		{"link single id", "", []string{"link", "a"}, "[INVALID_REQUEST]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, e, tt.stdin, tt.args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.want)
			}
		})
	}
}

func TestOutputError(t *testing.T) {
	err := outputError(errors.NewNotFound("abc"))
	if err.Error() != "[NOT_FOUND] contact not found: abc" {
		t.Errorf("outputError = %q", err.Error())
	}
	if err := outputError(os.ErrClosed); !strings.Contains(err.Error(), "closed") {
		t.Errorf("outputError(plain) = %q", err.Error())
	}
}

func TestSetup(t *testing.T) {
	base := t.TempDir()

	e, err := setup(base)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer e.db.Close()

	if e.imageDir != filepath.Join(base, "images") {
		t.Errorf("imageDir = %q", e.imageDir)
	}
	if info, err := os.Stat(e.imageDir); err != nil || !info.IsDir() {
		t.Errorf("image dir not created: %v", err)
	}
}

func TestSetup_InvalidPhotoMaxPixels(t *testing.T) {
	base := t.TempDir()
	if err := os.WriteFile(filepath.Join(base, "config.json"), []byte(`{"photo_max_pixels": 4}`), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := setup(base); err == nil || !strings.Contains(err.Error(), "photo_max_pixels") {
		t.Errorf("setup error = %v, want photo_max_pixels error", err)
	}
}

// TestIsCLIMode tests the isCLIMode function.
func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{"no args", []string{"contacts"}, false},
		{"import command", []string{"contacts", "import"}, true},
		{"serve command", []string{"contacts", "serve"}, true},
		{"help flag", []string{"contacts", "--help"}, true},
		{"version flag", []string{"contacts", "--version"}, true},
		{"short help flag", []string{"contacts", "-h"}, true},
		{"short version flag", []string{"contacts", "-v"}, true},
		{"unknown arg defaults to MCP", []string{"contacts", "--unknown"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Save and restore os.Args
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			if result := isCLIMode(); result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// TestIsHelpOrVersion tests the isHelpOrVersion function.
func TestIsHelpOrVersion(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{"no args", []string{"contacts"}, false},
		{"help flag", []string{"contacts", "--help"}, true},
		{"short version flag", []string{"contacts", "-v"}, true},
		{"help subcommand", []string{"contacts", "help"}, true},
		{"import command is not help", []string{"contacts", "import"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			if result := isHelpOrVersion(); result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// TestReadStdinWithLimit tests the readStdin function respects size limits.
func TestReadStdinWithLimit(t *testing.T) {
	feed := func(t *testing.T, content string) {
		t.Helper()
		r, w, err := os.Pipe()
		if err != nil {
			t.Fatalf("Failed to create pipe: %v", err)
		}
		go func() {
			_, _ = w.WriteString(content)
			w.Close()
		}()
		oldStdin := os.Stdin
		os.Stdin = r
		t.Cleanup(func() { os.Stdin = oldStdin })
	}

	t.Run("within limit", func(t *testing.T) {
		feed(t, "small content")
		result, err := readStdin(1000)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if result != "small content" {
			t.Errorf("expected %q, got %q", "small content", result)
		}
	})

	t.Run("exceeds limit", func(t *testing.T) {
		feed(t, strings.Repeat("x", 100))
		_, err := readStdin(50)
		if !errors.Is(err, errors.ErrOutOfMemory) {
			t.Errorf("expected OUT_OF_MEMORY for content exceeding limit, got %v", err)
		}
	})
}
