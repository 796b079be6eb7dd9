package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/contact"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.ContactsError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const contactColumns = `id, person_id, display_name, display_norm, uid, record_json, created_at, updated_at`

// Insert stores a new contact.
func Insert(db *sql.DB, c *contact.Contact) error {
	return insert(db, c)
}

// InsertTx stores a new contact inside tx.
func InsertTx(tx *sql.Tx, c *contact.Contact) error {
	return insert(tx, c)
}

func insert(ex execer, c *contact.Contact) error {
	if c.Record == nil {
		return errors.NewInvalidParameter("contact record is required")
	}
	data, err := json.Marshal(c.Record)
	if err != nil {
		return errors.NewInternal(err)
	}
	if c.PersonID == "" {
		c.PersonID = c.ID
	}

	query := `
		INSERT INTO contacts (` + contactColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = ex.Exec(query,
		c.ID, c.PersonID, c.DisplayName, c.DisplayNorm, toNullString(c.UID),
		string(data), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetByID retrieves a contact by its ULID.
func GetByID(db *sql.DB, id string) (*contact.Contact, error) {
	row := db.QueryRow(`SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id)
	c, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return c, nil
}

// ListPage returns one page of contacts ordered by display name, plus the total count.
func ListPage(db *sql.DB, limit, offset int) ([]contact.Summary, int, error) {
	total, err := Count(db)
	if err != nil {
		return nil, 0, err
	}

	rows, err := db.Query(`
		SELECT `+contactColumns+`
		FROM contacts
		ORDER BY display_norm, id
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	items := []contact.Summary{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		items = append(items, c.ToSummary())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return items, total, nil
}

// MaxSearchQueryChars bounds the length of a Search query.
const MaxSearchQueryChars = 200

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns contacts whose normalized display name or UID contains query,
// ordered like ListPage. query must already be normalized.
func Search(db *sql.DB, query string, limit, offset int) ([]contact.Summary, int, error) {
	pattern := "%" + likeEscaper.Replace(query) + "%"
	where := `WHERE display_norm LIKE ? ESCAPE '\' OR lower(uid) LIKE ? ESCAPE '\'`

	var total int
	if err := db.QueryRow(`SELECT COUNT(*) FROM contacts `+where, pattern, pattern).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	rows, err := db.Query(`
		SELECT `+contactColumns+`
		FROM contacts
		`+where+`
		ORDER BY display_norm, id
		LIMIT ? OFFSET ?
	`, pattern, pattern, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	items := []contact.Summary{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		items = append(items, c.ToSummary())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return items, total, nil
}

// UpdateRecord replaces the record of an existing contact along with the
// columns derived from it. PersonID and CreatedAt are left untouched.
func UpdateRecord(db *sql.DB, c *contact.Contact) error {
	if c.Record == nil {
		return errors.NewInvalidParameter("contact record is required")
	}
	data, err := json.Marshal(c.Record)
	if err != nil {
		return errors.NewInternal(err)
	}

	result, err := db.Exec(`
		UPDATE contacts
		SET display_name = ?, display_norm = ?, uid = ?, record_json = ?, updated_at = ?
		WHERE id = ?
	`, c.DisplayName, c.DisplayNorm, toNullString(c.UID), string(data), c.UpdatedAt, c.ID)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireAffected(result, c.ID)
}

// ListByPerson returns every contact linked to personID, oldest first.
func ListByPerson(db *sql.DB, personID string) ([]*contact.Contact, error) {
	rows, err := db.Query(`
		SELECT `+contactColumns+`
		FROM contacts
		WHERE person_id = ?
		ORDER BY created_at, id
	`, personID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []*contact.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// StreamAll calls fn for every contact, grouped by person and oldest first
// within a person. A non-nil error from fn stops the iteration and is returned.
func StreamAll(ctx context.Context, db *sql.DB, fn func(*contact.Contact) error) error {
	rows, err := db.QueryContext(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		ORDER BY person_id, created_at, id
	`)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return errors.NewInternal(err)
		}
		if err := fn(c); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		if ctx.Err() != nil {
			return errors.NewCancelled("stream")
		}
		return errors.NewInternal(err)
	}
	return nil
}

// Delete permanently removes a contact.
func Delete(db *sql.DB, id string) error {
	result, err := db.Exec(`DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireAffected(result, id)
}

// SetPerson links contacts by giving them all the same person_id. Either every
// id is updated or none is.
func SetPerson(db *sql.DB, ids []string, personID string) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.NewInternal(err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().Unix()
	for _, id := range ids {
		result, err := tx.Exec(`UPDATE contacts SET person_id = ?, updated_at = ? WHERE id = ?`, personID, now, id)
		if err != nil {
			return errors.NewInternal(err)
		}
		if err := requireAffected(result, id); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// Count returns the number of stored contacts.
func Count(db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM contacts`).Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

func requireAffected(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// scanContact scans a single row into a Contact.
func scanContact(row scanner) (*contact.Contact, error) {
	var (
		c          contact.Contact
		uid        sql.NullString
		recordJSON string
	)
	err := row.Scan(
		&c.ID, &c.PersonID, &c.DisplayName, &c.DisplayNorm, &uid,
		&recordJSON, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.UID = fromNullString(uid)
	c.Record = &contact.Record{}
	if err := json.Unmarshal([]byte(recordJSON), c.Record); err != nil {
		return nil, err
	}
	return &c, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
