// Package journal records non-state telemetry events to a SQLite database so
// a session's hello/meta traffic can be inspected afterwards.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	dirPermissions    = 0o750
	busyTimeoutMs     = 5000
	connectionTimeout = 5 * time.Second
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	session      TEXT    NOT NULL,
	received_at  INTEGER NOT NULL,
	type         TEXT    NOT NULL,
	timestamp_ms INTEGER,
	payload      TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS events_session ON events(session);
`

// Entry is one journaled event.
type Entry struct {
	Session     string
	ReceivedAt  time.Time
	Type        string
	TimestampMs *int64
	Payload     string
}

// Journal appends events for a single session.
type Journal struct {
	db      *sql.DB
	session string
	insert  *sql.Stmt
}

// Open opens (creating if needed) the journal at path and starts a new
// session.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_synchronous=NORMAL", path, busyTimeoutMs))
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}
	insert, err := db.PrepareContext(ctx, `INSERT INTO events (session, received_at, type, timestamp_ms, payload) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("preparing journal insert: %w", err)
	}
	return &Journal{db: db, session: uuid.NewString(), insert: insert}, nil
}

// Session returns the id events of this run are recorded under.
func (j *Journal) Session() string {
	return j.session
}

// Record appends one event.
func (j *Journal) Record(ctx context.Context, typ string, timestampMs *int64, payload string) error {
	var ts sql.NullInt64
	if timestampMs != nil {
		ts = sql.NullInt64{Int64: *timestampMs, Valid: true}
	}
	if _, err := j.insert.ExecContext(ctx, j.session, time.Now().UnixMilli(), typ, ts, payload); err != nil {
		return fmt.Errorf("journal insert: %w", err)
	}
	return nil
}

// Entries returns the events of session in insertion order.
func (j *Journal) Entries(ctx context.Context, session string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT session, received_at, type, timestamp_ms, payload FROM events WHERE session = ? ORDER BY id`, session)
	if err != nil {
		return nil, fmt.Errorf("journal query: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e        Entry
			received int64
			ts       sql.NullInt64
		)
		if err := rows.Scan(&e.Session, &received, &e.Type, &ts, &e.Payload); err != nil {
			return nil, fmt.Errorf("journal scan: %w", err)
		}
		e.ReceivedAt = time.UnixMilli(received)
		if ts.Valid {
			e.TimestampMs = &ts.Int64
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the database.
func (j *Journal) Close() error {
	_ = j.insert.Close()
	if err := j.db.Close(); err != nil {
		return fmt.Errorf("closing journal: %w", err)
	}
	return nil
}
