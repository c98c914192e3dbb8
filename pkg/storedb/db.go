// Package storedb opens a sqlite database and applies versioned,
// per-module migrations under a file lock.
package storedb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sys/unix"
	_ "modernc.org/sqlite"

	"github.com/jingkaihe/savemirror/internal/errx"
)

type Migration struct {
	Version int
	Name    string
	SQL     string
}

type OpenOptions struct {
	Path       string
	Module     string
	Migrations []Migration
}

func Open(ctx context.Context, opts OpenOptions) (*sql.DB, error) {
	if opts.Path == "" {
		return nil, ErrDBPathRequired
	}
	if opts.Module == "" {
		return nil, ErrModuleRequired
	}
	if err := checkMigrations(opts.Module, opts.Migrations); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0700); err != nil {
		return nil, errx.Wrap(ErrOpenDB, err)
	}

	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, errx.Wrap(ErrOpenDB, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := withInitLock(opts.Path, func() error {
		if err := configure(ctx, db); err != nil {
			return err
		}
		return migrate(ctx, db, opts.Module, opts.Migrations)
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Applied lists the migration versions recorded for module, ascending.
func Applied(ctx context.Context, db *sql.DB, module string) ([]int, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT version FROM schema_migrations WHERE module = ? ORDER BY version`, module)
	if err != nil {
		return nil, errx.Wrap(ErrReadMigrations, err)
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, errx.Wrap(ErrReadMigrations, err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.Wrap(ErrReadMigrations, err)
	}
	return versions, nil
}

func configure(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return errx.With(ErrConfigureDB, ": %s: %w", pragma, err)
		}
	}
	return nil
}

func checkMigrations(module string, migrations []Migration) error {
	seen := make(map[int]bool, len(migrations))
	for _, m := range migrations {
		if m.Version <= 0 {
			return errx.With(ErrInvalidMigration, ": module=%s version=%d", module, m.Version)
		}
		if seen[m.Version] {
			return errx.With(ErrDuplicateMigration, ": module=%s version=%d", module, m.Version)
		}
		seen[m.Version] = true
	}
	return nil
}

func migrate(ctx context.Context, db *sql.DB, module string, migrations []Migration) error {
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
  module TEXT NOT NULL,
  version INTEGER NOT NULL,
  name TEXT NOT NULL,
  applied_at TEXT NOT NULL,
  PRIMARY KEY (module, version)
)`); err != nil {
		return errx.Wrap(ErrCreateMigrationTbl, err)
	}

	applied, err := Applied(ctx, db, module)
	if err != nil {
		return err
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	pending := make([]Migration, 0, len(migrations))
	for _, m := range migrations {
		if !done[m.Version] {
			pending = append(pending, m)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].Version < pending[j].Version
	})

	for _, m := range pending {
		if err := apply(ctx, db, module, m); err != nil {
			return err
		}
	}
	return nil
}

// apply runs one migration and its bookkeeping row in a single transaction.
func apply(ctx context.Context, db *sql.DB, module string, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errx.With(ErrApplyMigration, ": begin %s/%d %s: %w", module, m.Version, m.Name, err)
	}
	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		_ = tx.Rollback()
		return errx.With(ErrApplyMigration, ": %s/%d %s: %w", module, m.Version, m.Name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations(module, version, name, applied_at) VALUES (?, ?, ?, ?)`,
		module, m.Version, m.Name, time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		_ = tx.Rollback()
		return errx.With(ErrRecordMigration, ": %s/%d %s: %w", module, m.Version, m.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return errx.With(ErrCommitMigration, ": %s/%d %s: %w", module, m.Version, m.Name, err)
	}
	return nil
}

func withInitLock(dbPath string, fn func() error) error {
	lockFile, err := os.OpenFile(dbPath+".init.lock", os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return errx.Wrap(ErrOpenInitLock, err)
	}
	defer lockFile.Close()

	fd := int(lockFile.Fd())
	if err := unix.Flock(fd, unix.LOCK_EX); err != nil {
		return errx.Wrap(ErrAcquireInitLock, err)
	}

	fnErr := fn()

	if err := unix.Flock(fd, unix.LOCK_UN); err != nil {
		return errors.Join(fnErr, errx.Wrap(ErrReleaseInitLock, err))
	}
	return fnErr
}
