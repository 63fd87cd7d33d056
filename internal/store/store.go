// Package store persists editor state between runs: cached note titles
// for the picker and the set of open tabs from the previous session.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// Current schema version. Bump when the layout changes.
const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

-- Title cache so the picker can render without re-reading every file.
CREATE TABLE IF NOT EXISTS note_titles (
    path  TEXT PRIMARY KEY,
    title TEXT NOT NULL
);

-- Tabs open when the last session exited, in display order.
CREATE TABLE IF NOT EXISTS session_tabs (
    position    INTEGER PRIMARY KEY,
    path        TEXT NOT NULL,
    cursor_line INTEGER NOT NULL DEFAULT 0,
    cursor_col  INTEGER NOT NULL DEFAULT 0,
    active      INTEGER NOT NULL DEFAULT 0
);
`

// SessionTab is one restored tab: the file it had open and where the
// caret was. Active marks the tab that had focus.
type SessionTab struct {
	Path       string
	CursorLine int
	CursorCol  int
	Active     bool
}

// Store is a SQLite-backed state store. Safe for use from multiple
// goroutines; command closures hit it off the UI loop.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (or creates) the store at path and runs migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// migrate brings an older database up to the current schema version.
func migrate(db *sql.DB) error {
	var current int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&current)
	if err == sql.ErrNoRows {
		current = 0
	} else if err != nil {
		current = 0
	}

	if current == schemaVersion {
		return nil
	}

	// Version 0 is a fresh database; nothing to rewrite yet. Future
	// versions add their steps here before the version bump.
	if _, err := db.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Title returns the cached title for a note path.
func (s *Store) Title(path string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var title string
	err := s.db.QueryRow("SELECT title FROM note_titles WHERE path = ?", path).Scan(&title)
	if err != nil {
		return "", false
	}
	return title, true
}

// SetTitle records the title for a note path, replacing any previous value.
func (s *Store) SetTitle(path, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("INSERT OR REPLACE INTO note_titles (path, title) VALUES (?, ?)", path, title)
	if err != nil {
		return fmt.Errorf("failed to store title: %w", err)
	}
	return nil
}

// Titles returns the whole title cache keyed by path.
func (s *Store) Titles() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT path, title FROM note_titles")
	if err != nil {
		return nil, fmt.Errorf("failed to read titles: %w", err)
	}
	defer rows.Close()

	titles := make(map[string]string)
	for rows.Next() {
		var path, title string
		if err := rows.Scan(&path, &title); err != nil {
			return nil, fmt.Errorf("failed to scan title row: %w", err)
		}
		titles[path] = title
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate titles: %w", err)
	}
	return titles, nil
}

// DeleteTitle drops a path from the title cache, for files that
// disappeared from the notes directory.
func (s *Store) DeleteTitle(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM note_titles WHERE path = ?", path); err != nil {
		return fmt.Errorf("failed to delete title: %w", err)
	}
	return nil
}

// SaveSession replaces the stored tab list with the given one.
func (s *Store) SaveSession(tabs []SessionTab) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin session save: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM session_tabs"); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear session: %w", err)
	}

	for i, tab := range tabs {
		active := 0
		if tab.Active {
			active = 1
		}
		_, err := tx.Exec(
			"INSERT INTO session_tabs (position, path, cursor_line, cursor_col, active) VALUES (?, ?, ?, ?, ?)",
			i, tab.Path, tab.CursorLine, tab.CursorCol, active,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to store tab %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// LoadSession returns the tabs saved by the previous run in display order.
// An empty slice means there is nothing to restore.
func (s *Store) LoadSession() ([]SessionTab, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT path, cursor_line, cursor_col, active FROM session_tabs ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	defer rows.Close()

	var tabs []SessionTab
	for rows.Next() {
		var tab SessionTab
		var active int
		if err := rows.Scan(&tab.Path, &tab.CursorLine, &tab.CursorCol, &active); err != nil {
			return nil, fmt.Errorf("failed to scan tab row: %w", err)
		}
		tab.Active = active != 0
		tabs = append(tabs, tab)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session: %w", err)
	}
	return tabs, nil
}
