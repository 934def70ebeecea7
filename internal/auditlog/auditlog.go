// Package auditlog records user-initiated actions and session events in a
// local SQLite database, shown on the console's Logs tab. Only actions the
// operator took are recorded; collection view state is never persisted.
package auditlog

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp  DATETIME NOT NULL,
	level      TEXT NOT NULL,
	message    TEXT NOT NULL,
	details    TEXT
);
CREATE INDEX IF NOT EXISTS idx_entries_timestamp ON entries(timestamp);
`

// Level classifies an entry.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Entry is one recorded action.
type Entry struct {
	ID        int64
	Timestamp time.Time
	Level     Level
	Message   string
	Details   string
}

// Store provides SQLite-backed audit log persistence.
type Store struct {
	db *sql.DB
}

// Open creates a Store with the given database path, running migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append records one entry at the current time.
func (s *Store) Append(level Level, message, details string) error {
	_, err := s.db.Exec(
		`INSERT INTO entries (timestamp, level, message, details) VALUES (?, ?, ?, ?)`,
		time.Now().UTC(), string(level), message, details,
	)
	return err
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, timestamp, level, message, details FROM entries ORDER BY timestamp DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var details sql.NullString
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Level, &e.Message, &details); err != nil {
			return nil, err
		}
		if details.Valid {
			e.Details = details.String
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries older than the retention window.
func (s *Store) Prune(olderThan time.Duration) (int64, error) {
	res, err := s.db.Exec(
		`DELETE FROM entries WHERE timestamp < ?`,
		time.Now().UTC().Add(-olderThan),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
