package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/resumeai/enhancer/internal/model"
)

var _ model.UsageLedger = (*SQLiteLedger)(nil)

// SQLiteLedger counts completed free analyses per session in a SQLite database,
// so the allowance survives a server restart. Only the session id and a
// timestamp are stored, never resume or job text.
type SQLiteLedger struct {
	db *sql.DB
}

// NewSQLiteLedger opens (or creates) a SQLite database at dbPath and ensures the
// free_analyses table exists.
func NewSQLiteLedger(dbPath string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS free_analyses (
		session_id TEXT NOT NULL,
		used_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating free_analyses table: %w", err)
	}
	createIndex := `CREATE INDEX IF NOT EXISTS idx_free_analyses_session ON free_analyses (session_id)`
	if _, err := db.Exec(createIndex); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating free_analyses index: %w", err)
	}

	return &SQLiteLedger{db: db}, nil
}

// Attempts returns how many analyses the session has completed.
func (l *SQLiteLedger) Attempts(sessionID string) (int, error) {
	var n int
	err := l.db.QueryRow("SELECT COUNT(*) FROM free_analyses WHERE session_id = ?", sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting analyses for %s: %w", sessionID, err)
	}
	return n, nil
}

// Record stores one completed analysis for the session.
func (l *SQLiteLedger) Record(sessionID string) error {
	_, err := l.db.Exec("INSERT INTO free_analyses (session_id, used_at) VALUES (?, ?)", sessionID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording analysis for %s: %w", sessionID, err)
	}
	return nil
}

// Cleanup deletes entries older than the given duration.
func (l *SQLiteLedger) Cleanup(olderThan time.Duration) error {
	cutoff := time.Now().UTC().Add(-olderThan)
	_, err := l.db.Exec("DELETE FROM free_analyses WHERE used_at < ?", cutoff)
	if err != nil {
		return fmt.Errorf("cleaning up analyses older than %v: %w", olderThan, err)
	}
	return nil
}

// IsEmpty returns true if the free_analyses table has no entries.
func (l *SQLiteLedger) IsEmpty() (bool, error) {
	var count int
	err := l.db.QueryRow("SELECT COUNT(*) FROM free_analyses").Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking if ledger is empty: %w", err)
	}
	return count == 0, nil
}

// Close closes the underlying database connection.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}
