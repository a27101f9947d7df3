// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package session keeps the logged in user, one-shot flash messages and the
CSRF token in cookies.

The session and flash cookies hold v4.public paseto tokens signed with
config.SessionSigner, so the server stays stateless.
*/
package session

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"codeberg.org/pinmark/pinmark/config"
	"codeberg.org/pinmark/pinmark/core/cookie"
	"codeberg.org/pinmark/pinmark/core/untrusted"
)

const (
	subjectSession = "session"
	claimUserID    = "uid"
)

var errBadUserID = errors.New("session token carries an invalid user id")

// Login issues a session cookie for userID.
//
// The CSRF token is rotated so a token planted before login cannot be reused.
func Login(w http.ResponseWriter, r *http.Request, userID int64) error {
	maxAge := config.Global.Session.MaxAge

	token, err := config.SessionSigner.Sign(subjectSession, maxAge, map[string]string{
		claimUserID: strconv.FormatInt(userID, 10),
	})
	if err != nil {
		return err
	}

	untrusted.SetCookie(w, r, cookie.SessionCookie, token, maxAge)
	untrusted.SetCookie(w, r, cookie.CSRFCookie, newCSRFToken(), maxAge)

	return nil
}

// Logout clears the session cookie.
func Logout(w http.ResponseWriter, r *http.Request) {
	untrusted.ClearCookie(w, r, cookie.SessionCookie)
}

// UserID returns the id of the logged in user.
//
// Missing, expired or forged tokens all report false.
func UserID(r *http.Request) (int64, bool) {
	signed := untrusted.GetCookie(r, cookie.SessionCookie)
	if signed == "" {
		return 0, false
	}

	id, err := parseUserID(signed)
	if err != nil {
		log.Debug().
			Err(err).
			Msg("Rejected session cookie")

		return 0, false
	}

	return id, true
}

func parseUserID(signed string) (int64, error) {
	token, err := config.SessionSigner.Parse(subjectSession, signed)
	if err != nil {
		return 0, err
	}

	raw, err := token.GetString(claimUserID)
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadUserID
	}

	return id, nil
}
