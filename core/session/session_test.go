// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package session_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/pinmark/pinmark/config"
	"codeberg.org/pinmark/pinmark/core/authenticated"
	"codeberg.org/pinmark/pinmark/core/session"
)

func TestMain(m *testing.M) {
	if err := config.SessionSigner.LoadSecretKeyFromHex(authenticated.NewSecretKeyHex()); err != nil {
		panic(err)
	}

	config.Global.Session.MaxAge = time.Hour

	os.Exit(m.Run())
}

// follow returns a request carrying the cookies set on rec.
func follow(rec *httptest.ResponseRecorder, method, target string, body url.Values) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, strings.NewReader(body.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 && c.Value != "" {
			r.AddCookie(c)
		}
	}

	return r
}

func TestLoginLogout(t *testing.T) {
	t.Parallel()

	_, ok := session.UserID(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)

	rec := httptest.NewRecorder()
	require.NoError(t, session.Login(rec, httptest.NewRequest(http.MethodPost, "/account/login", nil), 42))

	id, ok := session.UserID(follow(rec, http.MethodGet, "/", nil))
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	out := httptest.NewRecorder()
	session.Logout(out, follow(rec, http.MethodPost, "/account/logout", nil))

	var cleared bool

	for _, c := range out.Result().Cookies() {
		if c.Name == "Session" {
			cleared = c.MaxAge < 0
		}
	}

	assert.True(t, cleared)
}

func TestForgedSession(t *testing.T) {
	t.Parallel()

	var other authenticated.Validator
	require.NoError(t, other.LoadSecretKeyFromHex(authenticated.NewSecretKeyHex()))

	forged, err := other.Sign("session", time.Hour, map[string]string{"uid": "1"})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "Session", Value: url.QueryEscape(forged)})

	_, ok := session.UserID(r)
	assert.False(t, ok)
}

func TestFlash(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	session.AddFlash(rec, httptest.NewRequest(http.MethodPost, "/", nil),
		session.Message{Level: session.Success, Text: "Image added successfully"})

	second := httptest.NewRecorder()
	session.AddFlash(second, follow(rec, http.MethodPost, "/", nil),
		session.Message{Level: session.Info, Text: "again"})

	render := httptest.NewRecorder()
	messages := session.PopFlashes(render, follow(second, http.MethodGet, "/", nil))
	require.Len(t, messages, 2)
	assert.Equal(t, "Image added successfully", messages[0].Text)
	assert.Equal(t, session.Info, messages[1].Level)

	// consumed
	assert.Empty(t, session.PopFlashes(httptest.NewRecorder(), follow(render, http.MethodGet, "/", nil)))
}

func TestCSRF(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	token := session.EnsureCSRFToken(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, token)

	again := session.EnsureCSRFToken(httptest.NewRecorder(), follow(rec, http.MethodGet, "/", nil))
	assert.Equal(t, token, again)

	tests := []struct {
		name   string
		field  string
		header string
		want   bool
	}{
		{name: "form field", field: token, want: true},
		{name: "header", header: token, want: true},
		{name: "wrong token", field: "nope", want: false},
		{name: "missing", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := follow(rec, http.MethodPost, "/images/create", url.Values{session.CSRFField: {tt.field}})
			if tt.header != "" {
				r.Header.Set(session.CSRFHeader, tt.header)
			}

			assert.Equal(t, tt.want, session.VerifyCSRF(r))
		})
	}

	withHeader := follow(rec, http.MethodPost, "/images/create", url.Values{"title": {"Cat"}})
	withHeader.Header.Set(session.CSRFHeader, token)
	require.True(t, session.VerifyCSRF(withHeader))
	assert.Equal(t, "Cat", withHeader.PostForm.Get("title"))

	noCookie := httptest.NewRequest(http.MethodPost, "/", nil)
	noCookie.Header.Set(session.CSRFHeader, token)
	assert.False(t, session.VerifyCSRF(noCookie))

	assert.True(t, session.IsSafeMethod(http.MethodGet))
	assert.False(t, session.IsSafeMethod(http.MethodPost))
}
