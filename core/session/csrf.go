// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package session

import (
	"crypto/subtle"
	"net/http"

	"codeberg.org/pinmark/pinmark/config"
	"codeberg.org/pinmark/pinmark/core/cookie"
	"codeberg.org/pinmark/pinmark/core/idgen"
	"codeberg.org/pinmark/pinmark/core/untrusted"
)

const (
	// CSRFField is the hidden form field carrying the token.
	CSRFField = "csrf_token"
	// CSRFHeader carries the token on htmx requests.
	CSRFHeader = "X-CSRF-Token"

	csrfTokenBytes = 24
)

func newCSRFToken() string {
	return idgen.Token(csrfTokenBytes)
}

// EnsureCSRFToken returns the CSRF token of r, issuing a cookie when absent.
func EnsureCSRFToken(w http.ResponseWriter, r *http.Request) string {
	if token := untrusted.GetCookie(r, cookie.CSRFCookie); token != "" {
		return token
	}

	token := newCSRFToken()
	untrusted.SetCookie(w, r, cookie.CSRFCookie, token, config.Global.Session.MaxAge)

	return token
}

// VerifyCSRF reports whether the token submitted with r matches its cookie.
//
// The header takes precedence over the form field. The body is parsed
// either way so handlers can read r.PostForm.
func VerifyCSRF(r *http.Request) bool {
	expected := untrusted.GetCookie(r, cookie.CSRFCookie)
	if expected == "" {
		return false
	}

	if err := r.ParseForm(); err != nil {
		return false
	}

	submitted := r.Header.Get(CSRFHeader)
	if submitted == "" {
		submitted = r.PostForm.Get(CSRFField)
	}

	return subtle.ConstantTimeCompare([]byte(expected), []byte(submitted)) == 1
}

// IsSafeMethod reports whether method cannot change server state.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
