// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
This package defines the cookie names used by this application.
*/
package cookie

type CookieName string

// Cookie names defined as constants.
//
// NOTE: We don't use the `__Host-` prefix so that plain HTTP deployments on a LAN keep working.
const (
	// paseto v4.public token carrying the logged in user id
	SessionCookie CookieName = "Session"
	// double-submit token compared against the csrf_token form field
	CSRFCookie CookieName = "CSRF"
	// paseto v4.public token carrying one-shot messages
	FlashCookie CookieName = "Flash"

	LangCookie CookieName = "Lang" // for i18n use
)

// AllCookieNames defines all cookies set by the application.
var AllCookieNames = []CookieName{
	SessionCookie,
	CSRFCookie,
	FlashCookie,
	LangCookie,
}

// IsHttpOnly reports whether scripts must be denied access to the cookie.
//
// The CSRF cookie stays readable so htmx requests can echo it in a header.
func IsHttpOnly(name CookieName) bool {
	switch name {
	case CSRFCookie, LangCookie:
		return false
	default:
		return true
	}
}
