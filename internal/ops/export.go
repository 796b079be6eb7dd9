package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/config"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/contact"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/db"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/vcard"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path      string   // optional, default: ~/.contacts/exports/<name>-<timestamp>.vcf
	IDs       []string // optional, default: every stored contact
	Aggregate bool     // merge contacts linked to one person into a single vCard
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`    // vCard objects written
	Contacts   int    `json:"contacts"` // stored contacts read
	ExportedAt int64  `json:"exported_at"`
}

// Export writes contacts as vCard 3.0 to a file.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, codec *vcard.Codec, input ExportInput) (*ExportOutput, error) {
	now := time.Now()

	var selected []*contact.Contact
	if len(input.IDs) > 0 {
		var err error
		if selected, err = getContacts(database, input.IDs); err != nil {
			return nil, err
		}
	}

	exportPath := strings.TrimSpace(input.Path)
	if exportPath == "" {
		name := "contacts"
		if len(selected) == 1 {
			name = ExportFileStem(contact.Normalize(selected[0].DisplayName))
		}
		var err error
		if exportPath, err = defaultExportPath(name, now); err != nil {
			return nil, err
		}
	}

	// Default paths are validated too; the name part comes from user data.
	if err := ValidatePath(exportPath, PathCheckWrite, cfg); err != nil {
		return nil, err
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.NewIO(fmt.Errorf("failed to create export directory: %w", err))
	}

	// Write to temp file first, then atomic rename to preserve existing file on failure
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := createExportTemp(tempPath)
	if err != nil {
		return nil, err
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	w := &exportWriter{ctx: ctx, out: file, codec: codec, aggregate: input.Aggregate}
	if selected != nil {
		for _, c := range groupByPerson(selected, input.Aggregate) {
			if err := w.add(c); err != nil {
				return nil, err
			}
		}
	} else if err := db.StreamAll(ctx, database, w.add); err != nil {
		return nil, err
	}
	if err := w.flush(); err != nil {
		return nil, err
	}

	if err := file.Sync(); err != nil {
		return nil, errors.NewIO(err)
	}

	// Close before atomic replace (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return nil, errors.NewIO(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// Check if destination is a symlink (os.Rename would follow it)
	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInvalidRequest("export path is a symlink")
	}

	// On Windows os.Rename fails if the destination exists. The existing file
	// is kept rather than risking a non-atomic delete and rename.
	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; overwriting is not supported on Windows yet (choose a new path or delete the existing file)")
			}
		}
		return nil, errors.NewIO(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	log().Info().Str("path", exportPath).Int("objects", w.count).Int("contacts", w.contacts).Msg("export complete")
	return &ExportOutput{
		Path:       exportPath,
		Count:      w.count,
		Contacts:   w.contacts,
		ExportedAt: now.Unix(),
	}, nil
}

// exportWriter encodes contacts in arrival order. In aggregate mode it buffers
// consecutive contacts sharing a person_id and writes them as one object.
type exportWriter struct {
	ctx       context.Context
	out       io.Writer
	codec     *vcard.Codec
	aggregate bool

	person   string
	group    []*contact.Record
	count    int
	contacts int
}

func (w *exportWriter) add(c *contact.Contact) error {
	if err := w.ctx.Err(); err != nil {
		return errors.NewCancelled("export")
	}
	w.contacts++
	if !w.aggregate {
		text, err := w.codec.Encode(w.ctx, c.Record)
		if err != nil {
			return err
		}
		return w.write(text)
	}
	if len(w.group) > 0 && c.PersonID != w.person {
		if err := w.flush(); err != nil {
			return err
		}
	}
	w.person = c.PersonID
	w.group = append(w.group, c.Record)
	return nil
}

func (w *exportWriter) flush() error {
	if len(w.group) == 0 {
		return nil
	}
	text, err := w.codec.EncodeAggregate(w.ctx, w.group)
	w.group = nil
	if err != nil {
		return err
	}
	return w.write(text)
}

func (w *exportWriter) write(text string) error {
	if _, err := io.WriteString(w.out, text); err != nil {
		return errors.NewIO(err)
	}
	w.count++
	return nil
}

// getContacts loads contacts by ID in request order, skipping repeated IDs.
func getContacts(database *sql.DB, ids []string) ([]*contact.Contact, error) {
	seen := make(map[string]bool, len(ids))
	out := make([]*contact.Contact, 0, len(ids))
	for _, raw := range ids {
		id, err := requireID(raw)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		c, err := db.GetByID(database, id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// groupByPerson reorders contacts so that those sharing a person_id are
// adjacent, keeping the order in which each person first appears.
func groupByPerson(list []*contact.Contact, aggregate bool) []*contact.Contact {
	if !aggregate {
		return list
	}
	var order []string
	byPerson := make(map[string][]*contact.Contact)
	for _, c := range list {
		if _, ok := byPerson[c.PersonID]; !ok {
			order = append(order, c.PersonID)
		}
		byPerson[c.PersonID] = append(byPerson[c.PersonID], c)
	}
	out := make([]*contact.Contact, 0, len(list))
	for _, p := range order {
		out = append(out, byPerson[p]...)
	}
	return out
}

// defaultExportPath generates the default export path.
// Format: ~/.contacts/exports/<name>-<timestamp>.vcf
func defaultExportPath(name string, now time.Time) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s-%s.vcf", name, now.Format("2006-01-02T150405"))
	return filepath.Join(dir, filename), nil
}
