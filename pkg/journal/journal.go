// Package journal keeps a sqlite history of every mirror copy attempt.
package journal

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/jingkaihe/savemirror/internal/errx"
	"github.com/jingkaihe/savemirror/pkg/storedb"
)

const module = "journal"

type Direction string

const (
	DirectionIn     Direction = "in"
	DirectionOut    Direction = "out"
	DirectionMirror Direction = "mirror"
)

func (d Direction) Valid() bool {
	switch d {
	case DirectionIn, DirectionOut, DirectionMirror:
		return true
	}
	return false
}

// Entry is one copy attempt. Error is empty on success.
type Entry struct {
	ID        string    `json:"id"`
	Time      time.Time `json:"time"`
	Direction Direction `json:"direction"`
	Source    string    `json:"source"`
	Dest      string    `json:"dest"`
	Bytes     int64     `json:"bytes"`
	Error     string    `json:"error,omitempty"`
}

func (e Entry) Failed() bool { return e.Error != "" }

type ListOptions struct {
	// Limit caps the number of entries; zero means no limit.
	Limit     int
	Direction Direction
	// FailedOnly restricts the result to failed attempts.
	FailedOnly bool
}

type Journal struct {
	db  *sql.DB
	now func() time.Time
}

func Open(ctx context.Context, path string) (*Journal, error) {
	db, err := storedb.Open(ctx, storedb.OpenOptions{
		Path:       path,
		Module:     module,
		Migrations: migrations(),
	})
	if err != nil {
		return nil, errx.With(ErrOpenJournal, ": %s: %w", path, err)
	}
	return &Journal{db: db, now: time.Now}, nil
}

func migrations() []storedb.Migration {
	return []storedb.Migration{
		{
			Version: 1,
			Name:    "create_transfers",
			SQL: `
CREATE TABLE IF NOT EXISTS transfers (
  id TEXT PRIMARY KEY,
  created_at INTEGER NOT NULL,
  direction TEXT NOT NULL,
  source TEXT NOT NULL,
  dest TEXT NOT NULL,
  bytes INTEGER NOT NULL DEFAULT 0,
  error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_transfers_created_at ON transfers(created_at);`,
		},
	}
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record stores e, filling ID and Time when unset, and returns the stored
// entry.
func (j *Journal) Record(ctx context.Context, e Entry) (Entry, error) {
	if !e.Direction.Valid() {
		return Entry{}, errx.With(ErrRecordEntry, ": direction %q", e.Direction)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Time.IsZero() {
		e.Time = j.now()
	}
	if _, err := j.db.ExecContext(ctx,
		`INSERT INTO transfers(id, created_at, direction, source, dest, bytes, error) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Time.UnixNano(), string(e.Direction), e.Source, e.Dest, e.Bytes, e.Error,
	); err != nil {
		return Entry{}, errx.Wrap(ErrRecordEntry, err)
	}
	return e, nil
}

// List returns entries newest first.
func (j *Journal) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	if opts.Limit < 0 {
		return nil, errx.With(ErrInvalidFilter, ": limit %d", opts.Limit)
	}
	if opts.Direction != "" && !opts.Direction.Valid() {
		return nil, errx.With(ErrInvalidFilter, ": direction %q", opts.Direction)
	}

	query := `SELECT id, created_at, direction, source, dest, bytes, error FROM transfers WHERE 1=1`
	var args []any
	if opts.Direction != "" {
		query += ` AND direction = ?`
		args = append(args, string(opts.Direction))
	}
	if opts.FailedOnly {
		query += ` AND error != ''`
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errx.Wrap(ErrListEntries, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			createdAt int64
			direction string
		)
		if err := rows.Scan(&e.ID, &createdAt, &direction, &e.Source, &e.Dest, &e.Bytes, &e.Error); err != nil {
			return nil, errx.Wrap(ErrListEntries, err)
		}
		e.Time = time.Unix(0, createdAt)
		e.Direction = Direction(direction)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.Wrap(ErrListEntries, err)
	}
	return entries, nil
}
