// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package account_test

import (
	"context"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"codeberg.org/pinmark/pinmark/core/account"
	"codeberg.org/pinmark/pinmark/core/store"
)

func init() {
	account.HashCost = bcrypt.MinCost
}

func openStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "account.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func register(t *testing.T, s *store.Store, username, email, password string) store.User {
	t.Helper()

	form := account.NewRegistrationForm(url.Values{
		"username":  {username},
		"email":     {email},
		"password":  {password},
		"password2": {password},
	})

	ok, err := form.Validate(context.Background(), s)
	require.NoError(t, err)
	require.True(t, ok, form.Errors)

	u, err := account.Register(context.Background(), s, form)
	require.NoError(t, err)

	return u
}

func TestLoginFormValidate(t *testing.T) {
	t.Parallel()

	form := account.NewLoginForm(url.Values{"username": {" ann "}})
	assert.False(t, form.Validate())
	assert.Equal(t, "ann", form.Username)
	assert.True(t, form.Errors.Has("password"))
	assert.False(t, form.Errors.Has("username"))
}

func TestRegistrationFormValidate(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	register(t, s, "ann", "ann@example.com", "secret")

	tests := []struct {
		name      string
		values    url.Values
		wantField string
		wantMsg   string
	}{
		{
			name:      "password mismatch",
			values:    url.Values{"username": {"bob"}, "password": {"a"}, "password2": {"b"}},
			wantField: "password2",
			wantMsg:   "Passwords don't match.",
		},
		{
			name:      "email in use",
			values:    url.Values{"username": {"bob"}, "email": {"ANN@example.com"}, "password": {"a"}, "password2": {"a"}},
			wantField: "email",
			wantMsg:   "Email already in use.",
		},
		{
			name:      "username taken",
			values:    url.Values{"username": {"ann"}, "password": {"a"}, "password2": {"a"}},
			wantField: "username",
			wantMsg:   "A user with that username already exists.",
		},
		{
			name:      "username charset",
			values:    url.Values{"username": {"bad name!"}, "password": {"a"}, "password2": {"a"}},
			wantField: "username",
			wantMsg:   "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.",
		},
		{
			name:      "missing username",
			values:    url.Values{"password": {"a"}, "password2": {"a"}},
			wantField: "username",
			wantMsg:   "This field is required.",
		},
		{
			name:      "bad email",
			values:    url.Values{"username": {"bob"}, "email": {"bob"}, "password": {"a"}, "password2": {"a"}},
			wantField: "email",
			wantMsg:   "Enter a valid email address.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			form := account.NewRegistrationForm(tt.values)

			ok, err := form.Validate(context.Background(), s)
			require.NoError(t, err)
			assert.False(t, ok)
			require.True(t, form.Errors.Has(tt.wantField), form.Errors)
			assert.Equal(t, tt.wantMsg, string(form.Errors.Get(tt.wantField)[0]))
		})
	}
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openStore(t)

	ann := register(t, s, "ann", "ann@example.com", "secret")
	assert.NotEqual(t, "secret", ann.PasswordHash)

	got, err := account.Authenticate(ctx, s, "ann", "secret")
	require.NoError(t, err)
	assert.Equal(t, ann.ID, got.ID)

	_, err = account.Authenticate(ctx, s, "ann", "wrong")
	require.ErrorIs(t, err, account.ErrInvalidLogin)

	_, err = account.Authenticate(ctx, s, "nobody", "secret")
	require.ErrorIs(t, err, account.ErrInvalidLogin)

	require.NoError(t, s.SetActive(ctx, ann.ID, false))

	_, err = account.Authenticate(ctx, s, "ann", "secret")
	require.ErrorIs(t, err, account.ErrDisabledAccount)
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openStore(t)

	ann := register(t, s, "ann", "ann@example.com", "secret")
	register(t, s, "bob", "bob@example.com", "secret")

	form := account.NewProfileForm(url.Values{"first_name": {"Ann"}, "email": {"bob@example.com"}})
	ok, err := form.Validate(ctx, s, ann.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// keeping one's own address is fine
	form = account.NewProfileForm(url.Values{"first_name": {"Ann"}, "last_name": {"Lee"}, "email": {"ann@example.com"}})
	ok, err = form.Validate(ctx, s, ann.ID)
	require.NoError(t, err)
	require.True(t, ok)

	updated, err := account.UpdateProfile(ctx, s, ann, form)
	require.NoError(t, err)
	assert.Equal(t, "Lee", updated.LastName)

	reloaded, err := s.UserByID(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", reloaded.FirstName)
}
