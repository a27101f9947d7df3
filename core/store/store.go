// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package store persists users, bookmarked images, likes and activity actions
in SQLite.

The schema is created on Open. All timestamps are stored as UTC Unix
microseconds.
*/
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	// registers the "sqlite" database/sql driver
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")

	// ErrUsernameTaken is returned when creating a user whose username already exists.
	ErrUsernameTaken = errors.New("username already taken")
)

const dataDirPermissions = 0o750

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT    NOT NULL UNIQUE,
	first_name    TEXT    NOT NULL DEFAULT '',
	last_name     TEXT    NOT NULL DEFAULT '',
	email         TEXT    NOT NULL DEFAULT '',
	password_hash TEXT    NOT NULL,
	is_active     INTEGER NOT NULL DEFAULT 1,
	date_joined   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS images (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id     INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title       TEXT    NOT NULL,
	slug        TEXT    NOT NULL,
	url         TEXT    NOT NULL,
	file        TEXT    NOT NULL DEFAULT '',
	description TEXT    NOT NULL DEFAULT '',
	created     INTEGER NOT NULL,
	total_likes INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS images_created_idx ON images (created DESC);
CREATE INDEX IF NOT EXISTS images_total_likes_idx ON images (total_likes DESC);

CREATE TABLE IF NOT EXISTS image_likes (
	image_id INTEGER NOT NULL REFERENCES images(id) ON DELETE CASCADE,
	user_id  INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	PRIMARY KEY (image_id, user_id)
);

CREATE TABLE IF NOT EXISTS actions (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id         INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	verb            TEXT    NOT NULL,
	target_image_id INTEGER REFERENCES images(id) ON DELETE CASCADE,
	created         INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS actions_user_created_idx ON actions (user_id, created DESC);
CREATE INDEX IF NOT EXISTS actions_created_idx ON actions (created DESC);
`

// Store wraps the SQLite handle.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the SQLite database at path and applies the schema.
//
// The special path ":memory:" opens a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), dataDirPermissions); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	// SQLite serialises writers anyway; a single connection avoids SQLITE_BUSY
	// and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Info().
		Str("path", path).
		Msg("Opened database")

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SetClock replaces the time source used for new rows.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// inTx runs fn inside a transaction, committing when it returns nil.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()

		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func toMicros(t time.Time) int64 {
	return t.UTC().UnixMicro()
}

func fromMicros(v int64) time.Time {
	return time.UnixMicro(v).UTC()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// placeholders returns "?, ?, ..." with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}

	return strings.Repeat("?, ", n-1) + "?"
}
