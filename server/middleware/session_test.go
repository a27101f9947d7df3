// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/pinmark/pinmark/core/cookie"
	"codeberg.org/pinmark/pinmark/core/session"
	"codeberg.org/pinmark/pinmark/core/store"
	"codeberg.org/pinmark/pinmark/server/request_context"
)

type fakeUsers map[int64]store.User

func (f fakeUsers) UserByID(_ context.Context, id int64) (store.User, error) {
	if id == 99 {
		return store.User{}, errors.New("database is locked")
	}

	u, ok := f[id]
	if !ok {
		return store.User{}, store.ErrNotFound
	}

	return u, nil
}

// sessionCookieFor logs userID in and returns the resulting session cookie.
func sessionCookieFor(t *testing.T, userID int64) *http.Cookie {
	t.Helper()

	rec := httptest.NewRecorder()
	require.NoError(t, session.Login(rec, httptest.NewRequest(http.MethodPost, "/account/login", nil), userID))

	for _, c := range rec.Result().Cookies() {
		if c.Name == string(cookie.SessionCookie) {
			return c
		}
	}

	t.Fatal("no session cookie issued")

	return nil
}

func TestLoadUser(t *testing.T) {
	t.Parallel()

	users := fakeUsers{
		1: {ID: 1, Username: "alice", IsActive: true},
		2: {ID: 2, Username: "bob", IsActive: false},
	}

	tests := []struct {
		name        string
		userID      int64
		wantUser    string
		wantCleared bool
	}{
		{name: "Active user", userID: 1, wantUser: "alice"},
		{name: "Inactive user is logged out", userID: 2, wantCleared: true},
		{name: "Deleted user is logged out", userID: 3, wantCleared: true},
		{name: "Lookup failure keeps the cookie", userID: 99},
		{name: "Anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := createTestRequest(t, http.MethodGet, "/account/")
			if tt.userID != 0 {
				req.AddCookie(sessionCookieFor(t, tt.userID))
			}

			var got *store.User

			rr := httptest.NewRecorder()
			Wrap(LoadUser(users), http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got = request_context.FromRequest(r).CommonData.User
			})).ServeHTTP(rr, req)

			if tt.wantUser == "" {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, tt.wantUser, got.Username)
			}

			cleared := false
			for _, c := range rr.Result().Cookies() {
				if c.Name == string(cookie.SessionCookie) && c.MaxAge < 0 {
					cleared = true
				}
			}

			assert.Equal(t, tt.wantCleared, cleared)
		})
	}
}

func TestCSRF(t *testing.T) {
	t.Parallel()

	const token = "known-token"

	tests := []struct {
		name       string
		method     string
		path       string
		cookie     string
		form       string
		header     string
		wantStatus int
	}{
		{name: "GET issues a token", method: http.MethodGet, path: "/account/login", wantStatus: http.StatusOK},
		{name: "POST without cookie", method: http.MethodPost, path: "/account/login", form: token, wantStatus: http.StatusForbidden},
		{name: "POST with matching field", method: http.MethodPost, path: "/account/login", cookie: token, form: token, wantStatus: http.StatusOK},
		{name: "POST with matching header", method: http.MethodPost, path: "/images/like/1", cookie: token, header: token, wantStatus: http.StatusOK},
		{name: "POST with wrong field", method: http.MethodPost, path: "/account/login", cookie: token, form: "other", wantStatus: http.StatusForbidden},
		{name: "API is exempt", method: http.MethodPost, path: "/api/v1/images", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var body *strings.Reader
			if tt.form != "" {
				body = strings.NewReader(url.Values{session.CSRFField: {tt.form}}.Encode())
			} else {
				body = strings.NewReader("")
			}

			req := httptest.NewRequest(tt.method, tt.path, body)
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: string(cookie.CSRFCookie), Value: tt.cookie})
			}

			if tt.header != "" {
				req.Header.Set(session.CSRFHeader, tt.header)
			}

			req = req.WithContext(request_context.WithRequestContext(req.Context(), req))

			var seenToken string

			rr := httptest.NewRecorder()
			Wrap(CSRF, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seenToken = request_context.FromRequest(r).CommonData.CSRFToken

				w.WriteHeader(http.StatusOK)
			})).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)

			if tt.wantStatus == http.StatusOK {
				assert.NotEmpty(t, seenToken)

				if tt.cookie != "" {
					assert.Equal(t, tt.cookie, seenToken)
				}
			}
		})
	}
}
