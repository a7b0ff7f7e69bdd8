// internal/strategy/sqlite.go
package strategy

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/clipsense/clipsense/pkg/types"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS decision_history (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	content_type TEXT NOT NULL,
	strategy     TEXT NOT NULL,
	decided_at   TIMESTAMP NOT NULL,
	satisfaction REAL
);
CREATE INDEX IF NOT EXISTS idx_history_decided_at ON decision_history(decided_at);
`

// SQLiteHistoryStore persists decision history in a SQLite database.
type SQLiteHistoryStore struct {
	db     *sql.DB
	closed bool
}

// NewSQLiteHistoryStore opens (creating if necessary) the history database
// at the given path.
func NewSQLiteHistoryStore(path string) (*SQLiteHistoryStore, error) {
	if path == "" {
		return nil, fmt.Errorf("history database path is required")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &SQLiteHistoryStore{db: db}, nil
}

// Append writes one history entry.
func (s *SQLiteHistoryStore) Append(entry HistoryEntry) error {
	if s.closed {
		return fmt.Errorf("history store is closed")
	}

	var satisfaction interface{}
	if entry.Satisfaction != nil {
		satisfaction = *entry.Satisfaction
	}

	_, err := s.db.Exec(
		"INSERT INTO decision_history (content_type, strategy, decided_at, satisfaction) VALUES (?, ?, ?, ?)",
		string(entry.ContentType), string(entry.Strategy), entry.Timestamp.UTC(), satisfaction,
	)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

// Load returns up to limit entries, oldest first, so that replaying them
// into a ring leaves the newest entries resident.
func (s *SQLiteHistoryStore) Load(limit int) ([]HistoryEntry, error) {
	if s.closed {
		return nil, fmt.Errorf("history store is closed")
	}
	if limit <= 0 {
		limit = DefaultHistoryCapacity
	}

	rows, err := s.db.Query(
		`SELECT content_type, strategy, decided_at, satisfaction
		 FROM (SELECT * FROM decision_history ORDER BY decided_at DESC, id DESC LIMIT ?)
		 ORDER BY decided_at ASC, id ASC`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			contentType  string
			strategyName string
			decidedAt    time.Time
			satisfaction sql.NullFloat64
		)
		if err := rows.Scan(&contentType, &strategyName, &decidedAt, &satisfaction); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}

		entry := HistoryEntry{
			ContentType: types.ContentType(contentType),
			Strategy:    types.ProcessingStrategy(strategyName),
			Timestamp:   decidedAt,
		}
		if satisfaction.Valid {
			s := satisfaction.Float64
			entry.Satisfaction = &s
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}

	return entries, nil
}

// Close closes the underlying database.
func (s *SQLiteHistoryStore) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
