// Package history records which secrets were opened, in SQLite. The browser
// uses it to float recently used items to the top of selection lists; the
// history subcommand prints it.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry is one recorded secret access.
type Entry struct {
	Kind       string
	Name       string
	AccessedAt time.Time
}

// Store is the SQLite-backed access log.
type Store struct {
	db *sql.DB
}

// NewStore opens (and if needed creates) the history database.
func NewStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS access_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		accessed_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_access_log_kind ON access_log(kind);
	CREATE INDEX IF NOT EXISTS idx_access_log_accessed_at ON access_log(accessed_at DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return nil
}

// Record logs one access.
func (s *Store) Record(kind, name string) error {
	_, err := s.db.Exec(
		`INSERT INTO access_log (kind, name, accessed_at) VALUES (?, ?, ?)`,
		kind, name, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to record access: %w", err)
	}
	return nil
}

// Recent returns the distinct names accessed under kind, most recent first.
func (s *Store) Recent(kind string, limit int) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT name, MAX(accessed_at) AS last
		 FROM access_log WHERE kind = ?
		 GROUP BY name ORDER BY last DESC LIMIT ?`,
		kind, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name, last string
		if err := rows.Scan(&name, &last); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// List returns the newest entries across all kinds, most recent first.
func (s *Store) List(limit int) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT kind, name, accessed_at FROM access_log
		 ORDER BY accessed_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Kind, &e.Name, &e.AccessedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes every entry.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM access_log`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SortByRecency orders names so that recently accessed ones come first,
// preserving the existing relative order of the rest.
func SortByRecency(names []string, recent []string) []string {
	rank := make(map[string]int, len(recent))
	for i, n := range recent {
		rank[n] = i + 1
	}

	out := make([]string, 0, len(names))
	for _, n := range names {
		if rank[n] > 0 {
			out = append(out, n)
		}
	}
	// Recent names first, in recency order.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && rank[out[j]] < rank[out[j-1]]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	for _, n := range names {
		if rank[n] == 0 {
			out = append(out, n)
		}
	}
	return out
}
