// Package repository persists the normalized row set as a single-key
// snapshot. The store is an embedded SQLite database holding one JSON
// payload per key; the presentation layer reads the snapshot back and
// recomputes everything derived from it.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dcastanho/po-insight/internal/domain/ingest/schema"
)

// SnapshotKey is the single key the normalized row set lives under.
// Bump the suffix when the payload schema changes shape.
const SnapshotKey = "procurement.rows.v2"

const snapshotVersion = 2

// ErrNoSnapshot is returned by Load when nothing has been ingested yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// SnapshotRepository is the persistence boundary the ingestion service
// talks to.
type SnapshotRepository interface {
	Save(ctx context.Context, rows []schema.CanonicalRow) error
	Load(ctx context.Context) ([]schema.CanonicalRow, error)
	Clear(ctx context.Context) error
	Close() error
}

// Store implements SnapshotRepository over SQLite.
type Store struct {
	conn *sql.DB
}

// Open creates the database file (and parent directory) if needed and
// prepares the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	schemaSQL := `
CREATE TABLE IF NOT EXISTS snapshots (
  key        TEXT PRIMARY KEY,
  payload    TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`
	if _, err := conn.Exec(schemaSQL); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &Store{conn: conn}, nil
}

func (s *Store) Close() error { return s.conn.Close() }

// snapshotEnvelope is the versioned on-disk payload. Date-valued fields
// are declared explicitly as RFC 3339 strings and re-parsed field by
// field on load; nothing is revived by key-name inspection.
type snapshotEnvelope struct {
	Version int           `json:"version"`
	SavedAt string        `json:"savedAt"`
	Rows    []snapshotRow `json:"rows"`
}

type snapshotRow struct {
	PONumber      string  `json:"poNumber"`
	CreationDate  *string `json:"creationDate"`
	MarketerName  string  `json:"marketerName"`
	VendorName    string  `json:"vendorName"`
	TeamName      string  `json:"teamName"`
	POAmount      float64 `json:"poAmount"`
	InvoiceNumber string  `json:"invoiceNumber"`
	InvoiceAmount float64 `json:"invoiceAmount"`
	GRDate        *string `json:"grDate"`
	Status        string  `json:"status"`
}

// Save replaces the snapshot under SnapshotKey with the given rows.
func (s *Store) Save(ctx context.Context, rows []schema.CanonicalRow) error {
	env := snapshotEnvelope{
		Version: snapshotVersion,
		SavedAt: time.Now().UTC().Format(time.RFC3339),
		Rows:    make([]snapshotRow, len(rows)),
	}
	for i, r := range rows {
		env.Rows[i] = snapshotRow{
			PONumber:      r.PONumber,
			CreationDate:  encodeDate(r.CreationDate),
			MarketerName:  r.MarketerName,
			VendorName:    r.VendorName,
			TeamName:      r.TeamName,
			POAmount:      r.POAmount,
			InvoiceNumber: r.InvoiceNumber,
			InvoiceAmount: r.InvoiceAmount,
			GRDate:        encodeDate(r.GRDate),
			Status:        r.Status,
		}
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.conn.ExecContext(ctx, `
INSERT INTO snapshots (key, payload, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		SnapshotKey, string(payload), env.SavedAt)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot back, reviving the declared date fields.
func (s *Store) Load(ctx context.Context) ([]schema.CanonicalRow, error) {
	var payload string
	err := s.conn.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE key = ?`, SnapshotKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var env snapshotEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if env.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", env.Version)
	}

	rows := make([]schema.CanonicalRow, len(env.Rows))
	for i, r := range env.Rows {
		creation, err := decodeDate(r.CreationDate)
		if err != nil {
			return nil, fmt.Errorf("row %d: creation date: %w", i, err)
		}
		gr, err := decodeDate(r.GRDate)
		if err != nil {
			return nil, fmt.Errorf("row %d: gr date: %w", i, err)
		}
		rows[i] = schema.CanonicalRow{
			PONumber:      r.PONumber,
			CreationDate:  creation,
			MarketerName:  r.MarketerName,
			VendorName:    r.VendorName,
			TeamName:      r.TeamName,
			POAmount:      r.POAmount,
			InvoiceNumber: r.InvoiceNumber,
			InvoiceAmount: r.InvoiceAmount,
			GRDate:        gr,
			Status:        r.Status,
		}
	}
	return rows, nil
}

// Clear drops the stored snapshot. Clearing an empty store is not an
// error.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, SnapshotKey)
	return err
}

func encodeDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func decodeDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
