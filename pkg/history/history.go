package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one archived submission: who asked which capability what,
// and how it ended. Result payloads are stored as a short summary, not
// the full body; history is an audit log, not a response cache.
type Record struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	ChannelID  string    `json:"channel_id"`
	Username   string    `json:"username"`
	Capability string    `json:"capability"`
	Input      string    `json:"input"`
	Kind       string    `json:"kind"`  // result kind, empty on failure
	Error      string    `json:"error"` // user-facing error, empty on success
}

// Store persists submission records in a local sqlite database.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS submissions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts INTEGER NOT NULL,
	channel_id TEXT NOT NULL,
	username TEXT NOT NULL,
	capability TEXT NOT NULL,
	input TEXT NOT NULL,
	kind TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_submissions_ts ON submissions(ts);
`

// Open creates or opens the history database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}

	// sqlite allows a single writer; serialize through one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate history db: %w", err)
	}

	return &Store{db: db}, nil
}

// Record appends one submission outcome.
func (s *Store) Record(ctx context.Context, r Record) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (ts, channel_id, username, capability, input, kind, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Timestamp.Unix(), r.ChannelID, r.Username, r.Capability, r.Input, r.Kind, r.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ts, channel_id, username, capability, input, kind, error
		 FROM submissions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var ts int64
		if err := rows.Scan(&r.ID, &ts, &r.ChannelID, &r.Username, &r.Capability, &r.Input, &r.Kind, &r.Error); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		r.Timestamp = time.Unix(ts, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
