// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// User is a registered account.
type User struct {
	ID           int64
	Username     string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	IsActive     bool
	DateJoined   time.Time
}

// DisplayName returns the first name when set, otherwise the username.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}

	return u.Username
}

const userColumns = `id, username, first_name, last_name, email, password_hash, is_active, date_joined`

func scanUser(row interface{ Scan(dest ...any) error }) (User, error) {
	var (
		u      User
		joined int64
	)

	err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.IsActive, &joined)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}

	if err != nil {
		return User{}, err
	}

	u.DateJoined = fromMicros(joined)

	return u, nil
}

// CreateUser inserts u and returns it with ID and DateJoined populated.
func (s *Store) CreateUser(ctx context.Context, u User) (User, error) {
	u.DateJoined = s.now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, first_name, last_name, email, password_hash, is_active, date_joined)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.IsActive, toMicros(u.DateJoined))
	if isUniqueViolation(err) {
		return User{}, ErrUsernameTaken
	}

	if err != nil {
		return User{}, fmt.Errorf("failed to create user %q: %w", u.Username, err)
	}

	u.ID, err = res.LastInsertId()
	if err != nil {
		return User{}, err
	}

	return u, nil
}

// UserByID fetches a user by primary key.
func (s *Store) UserByID(ctx context.Context, id int64) (User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// UserByUsername fetches a user by exact username.
func (s *Store) UserByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

// EmailTaken reports whether another user than exceptID registered email.
//
// The comparison ignores case. Pass exceptID 0 to check all users.
func (s *Store) EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	var n int

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE lower(email) = ? AND id != ?`,
		strings.ToLower(email), exceptID).Scan(&n)
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// UpdateProfile stores the editable profile fields of u.
func (s *Store) UpdateProfile(ctx context.Context, u User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET first_name = ?, last_name = ?, email = ? WHERE id = ?`,
		u.FirstName, u.LastName, u.Email, u.ID)
	if err != nil {
		return fmt.Errorf("failed to update user %d: %w", u.ID, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}

// SetActive enables or disables login for a user.
func (s *Store) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return err
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}
