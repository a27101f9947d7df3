// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package account implements login, registration and profile editing on top
of the user table.
*/
package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"codeberg.org/pinmark/pinmark/core/store"
)

var (
	// ErrInvalidLogin is returned for an unknown username or a wrong password.
	ErrInvalidLogin = errors.New("invalid login")

	// ErrDisabledAccount is returned when the credentials match an inactive user.
	ErrDisabledAccount = errors.New("disabled account")
)

// HashCost is the bcrypt cost used for new passwords.
var HashCost = bcrypt.DefaultCost

// dummyHash is compared against when the username is unknown so that both
// failure paths take the same time.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("pinmark"), bcrypt.MinCost)

// Users is the subset of the store used by this package.
type Users interface {
	CreateUser(ctx context.Context, u store.User) (store.User, error)
	UserByUsername(ctx context.Context, username string) (store.User, error)
	EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error)
	UpdateProfile(ctx context.Context, u store.User) error
}

// Authenticate returns the active user matching username and password.
func Authenticate(ctx context.Context, users Users, username, password string) (store.User, error) {
	user, err := users.UserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))

		return store.User{}, ErrInvalidLogin
	}

	if err != nil {
		return store.User{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return store.User{}, ErrInvalidLogin
	}

	if !user.IsActive {
		return store.User{}, ErrDisabledAccount
	}

	return user, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// Register creates the user described by a validated form.
func Register(ctx context.Context, users Users, form *RegistrationForm) (store.User, error) {
	hash, err := HashPassword(form.Password)
	if err != nil {
		return store.User{}, err
	}

	user, err := users.CreateUser(ctx, store.User{
		Username:     form.Username,
		FirstName:    form.FirstName,
		Email:        form.Email,
		PasswordHash: hash,
		IsActive:     true,
	})
	if errors.Is(err, store.ErrUsernameTaken) {
		form.Errors.Add(fieldUsername, msgUsernameTaken)

		return store.User{}, err
	}

	if err != nil {
		return store.User{}, err
	}

	log.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("Registered user")

	return user, nil
}

// UpdateProfile applies a validated profile form to user.
func UpdateProfile(ctx context.Context, users Users, user store.User, form *ProfileForm) (store.User, error) {
	user.FirstName = form.FirstName
	user.LastName = form.LastName
	user.Email = form.Email

	if err := users.UpdateProfile(ctx, user); err != nil {
		return store.User{}, err
	}

	return user, nil
}
