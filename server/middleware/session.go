// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"codeberg.org/pinmark/pinmark/core/session"
	"codeberg.org/pinmark/pinmark/core/store"
	"codeberg.org/pinmark/pinmark/server/request_context"
)

// UserLoader resolves the user id stored in the session cookie.
type UserLoader interface {
	UserByID(ctx context.Context, id int64) (store.User, error)
}

// LoadUser attaches the logged in user to the request context.
//
// Sessions of deleted or deactivated users are cleared.
func LoadUser(users UserLoader) Middleware {
	return func(w http.ResponseWriter, r *http.Request, next http.Handler) {
		userID, ok := session.UserID(r)
		if !ok {
			next.ServeHTTP(w, r)

			return
		}

		user, err := users.UserByID(r.Context(), userID)

		switch {
		case err == nil && user.IsActive:
			request_context.FromRequest(r).CommonData.User = &user
		case err == nil, errors.Is(err, store.ErrNotFound):
			session.Logout(w, r)
		default:
			log.Err(err).
				Int64("user_id", userID).
				Msg("Failed to load session user")
		}

		next.ServeHTTP(w, r)
	}
}

// CSRF issues the double-submit token and rejects unsafe requests that do not echo it.
//
// The JSON API under /api/ is read-only and skipped.
func CSRF(w http.ResponseWriter, r *http.Request, next http.Handler) {
	rc := request_context.FromRequest(r)
	rc.CommonData.CSRFToken = session.EnsureCSRFToken(w, r)

	if session.IsSafeMethod(r.Method) || strings.HasPrefix(r.URL.Path, "/api/") {
		next.ServeHTTP(w, r)

		return
	}

	if !session.VerifyCSRF(r) {
		log.Warn().
			Str("request_id", rc.RequestID).
			Str("path", r.URL.Path).
			Msg("CSRF verification failed")

		RenderStatus(w, r, http.StatusForbidden, errCSRFFailed)

		return
	}

	next.ServeHTTP(w, r)
}
