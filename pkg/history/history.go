// Package history persists which groups and entries were visited, per
// vault file. Only paths and timestamps are stored, never field values.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const createSchema = `
CREATE TABLE IF NOT EXISTS visits (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	vault      TEXT NOT NULL,
	path       TEXT NOT NULL,
	kind       TEXT NOT NULL,
	visited_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_visits_vault ON visits(vault);
CREATE INDEX IF NOT EXISTS idx_visits_visited_at ON visits(visited_at);
`

// Visit kinds.
const (
	KindGroup = "group"
	KindEntry = "entry"
)

// Visit is one recorded navigation step.
type Visit struct {
	Vault     string
	Path      string
	Kind      string
	VisitedAt time.Time
}

// Store wraps the history database.
type Store struct {
	conn *sql.DB
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: opening database: %w", err)
	}
	if _, err := conn.Exec(createSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: creating schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Record stores one visit.
func (s *Store) Record(vault, path, kind string) error {
	_, err := s.conn.Exec(
		`INSERT INTO visits (vault, path, kind, visited_at) VALUES (?, ?, ?, ?)`,
		vault, path, kind, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("history: recording visit: %w", err)
	}
	return nil
}

// Recent returns the most recent visits for a vault, newest first.
// An empty vault matches all vaults.
func (s *Store) Recent(vault string, limit int) ([]Visit, error) {
	query := `SELECT vault, path, kind, visited_at FROM visits`
	args := []any{}
	if vault != "" {
		query += ` WHERE vault = ?`
		args = append(args, vault)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: querying visits: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var v Visit
		var ts string
		if err := rows.Scan(&v.Vault, &v.Path, &v.Kind, &ts); err != nil {
			return nil, fmt.Errorf("history: scanning visit: %w", err)
		}
		v.VisitedAt, _ = time.Parse(time.RFC3339Nano, ts)
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// Prune deletes visits older than the given duration. Returns the number
// of rows removed.
func (s *Store) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339Nano)
	res, err := s.conn.Exec(`DELETE FROM visits WHERE visited_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("history: pruning visits: %w", err)
	}
	return res.RowsAffected()
}
