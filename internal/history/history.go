package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"github.com/blue-code/FlexPlay/internal/logging"
)

// maxEntries caps how much play history is retained.
const maxEntries = 50

// defaultTimeout bounds individual store operations.
const defaultTimeout = 5 * time.Second

// Entry is one play-history record.
type Entry struct {
	Folder    string    `json:"folder"`
	Filename  string    `json:"filename"`
	Position  float64   `json:"position"`
	Timestamp time.Time `json:"timestamp"`
}

// Store persists play history in SQLite. One row per video; re-watching
// replaces the old record, and only the newest maxEntries rows survive.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the history database at dbPath.
func New(ctx context.Context, dbPath string) (*Store, error) {
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		closeQuiet(db)
		return nil, fmt.Errorf("connect history database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		folder TEXT NOT NULL,
		filename TEXT NOT NULL,
		position REAL NOT NULL DEFAULT 0,
		timestamp INTEGER NOT NULL,
		UNIQUE(folder, filename)
	);
	CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp DESC);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		closeQuiet(db)
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}

	logging.Info("history database ready at %s", dbPath)
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record upserts the entry and trims the table to the newest maxEntries
// rows.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.db.ExecContext(opCtx, `
		INSERT INTO history (folder, filename, position, timestamp)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(folder, filename)
		DO UPDATE SET position = excluded.position, timestamp = excluded.timestamp`,
		entry.Folder, entry.Filename, entry.Position, ts.Unix())
	if err != nil {
		return fmt.Errorf("record history: %w", err)
	}

	_, err = s.db.ExecContext(opCtx, `
		DELETE FROM history WHERE id NOT IN (
			SELECT id FROM history ORDER BY timestamp DESC, id DESC LIMIT ?
		)`, maxEntries)
	if err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	return nil
}

// List returns play history, newest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(opCtx, `
		SELECT folder, filename, position, timestamp
		FROM history ORDER BY timestamp DESC, id DESC LIMIT ?`, maxEntries)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Warn("close history rows: %v", err)
		}
	}()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.Folder, &e.Filename, &e.Position, &ts); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.Timestamp = time.Unix(ts, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Remove drops every record for one video, e.g. after the source file
// was deleted.
func (s *Store) Remove(ctx context.Context, folder, filename string) error {
	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(opCtx, `DELETE FROM history WHERE folder = ? AND filename = ?`, folder, filename); err != nil {
		return fmt.Errorf("remove history: %w", err)
	}
	return nil
}

func closeQuiet(db *sql.DB) {
	if err := db.Close(); err != nil {
		logging.Error("close history database: %v", err)
	}
}
