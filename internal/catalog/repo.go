package catalog

import (
	"fmt"
	"time"

	"github.com/starford/laguz/internal/models"
)

// FileRow represents a row in the files table.
type FileRow struct {
	RawPath       string
	CanonicalPath string
	Checksum      string
	UpdatedAt     time.Time
}

// UpsertFile inserts or replaces the record for a processed source file.
func (db *DB) UpsertFile(row FileRow) error {
	_, err := db.conn.Exec(`
		INSERT INTO files (raw_path, canonical_path, checksum, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(raw_path) DO UPDATE SET
			canonical_path = excluded.canonical_path,
			checksum       = excluded.checksum,
			updated_at     = excluded.updated_at
	`, row.RawPath, row.CanonicalPath, row.Checksum, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("catalog: upsert file: %w", err)
	}
	return nil
}

// AllChecksums returns the checksum of every processed file keyed by raw path.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT raw_path, checksum FROM files`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// ReplaceUnresolved replaces the recorded unresolved targets for a source
// file within a transaction.
func (db *DB) ReplaceUnresolved(source string, targets []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM unresolved WHERE source = ?`, source); err != nil {
		return fmt.Errorf("catalog: clear unresolved: %w", err)
	}
	if len(targets) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO unresolved (source, target) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("catalog: prepare unresolved insert: %w", err)
		}
		defer stmt.Close()
		for _, target := range targets {
			if _, err := stmt.Exec(source, target); err != nil {
				return fmt.Errorf("catalog: insert unresolved: %w", err)
			}
		}
	}

	return tx.Commit()
}

// Unresolved returns every recorded unresolved link, ordered by source path.
func (db *DB) Unresolved() ([]models.UnresolvedLink, error) {
	rows, err := db.conn.Query(`SELECT source, target FROM unresolved ORDER BY source, target`)
	if err != nil {
		return nil, fmt.Errorf("catalog: unresolved: %w", err)
	}
	defer rows.Close()

	var out []models.UnresolvedLink
	for rows.Next() {
		var l models.UnresolvedLink
		if err := rows.Scan(&l.Source, &l.Target); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Store is the interface consumed by the pipeline and the status API.
// Depending on the interface rather than *DB keeps tests free to substitute
// fakes.
type Store interface {
	UpsertFile(row FileRow) error
	AllChecksums() (map[string]string, error)
	ReplaceUnresolved(source string, targets []string) error
	Unresolved() ([]models.UnresolvedLink, error)
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
