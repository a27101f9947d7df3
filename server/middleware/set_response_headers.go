// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"maps"
	"net/http"
	"strings"
	"sync/atomic"

	"codeberg.org/pinmark/pinmark/config"
)

var (
	// baseHeaders defines the default headers to be set in responses.
	//
	// Pinmark-Version and Pinmark-Revision are added dynamically in SetResponseHeaders.
	//
	// NOTE: we intentionally don't set CORP or HSTS headers.
	baseHeaders = http.Header{
		"Referrer-Policy":         {"same-origin"},
		"X-Frame-Options":         {"DENY"},
		"X-Content-Type-Options":  {"nosniff"},
		"Permissions-Policy":      {strings.Join(defaultPermissionsPolicy, ", ")},
		"Content-Security-Policy": {strings.Join(csp, "; ") + ";"},
	}

	// bookmarked images and discovered candidates are hotlinked from any https origin
	csp = []string{
		"base-uri 'self'",
		"default-src 'self'",
		"style-src 'self'",
		"script-src 'self'",
		"font-src 'self'",
		"connect-src 'self'",
		"img-src 'self' data: https:",
		"form-action 'self'",
		"frame-ancestors 'none'",
	}

	defaultPermissionsPolicy = []string{
		"accelerometer=()",
		"camera=()",
		"display-capture=()",
		"geolocation=()",
		"gyroscope=()",
		"magnetometer=()",
		"microphone=()",
		"payment=()",
		"usb=()",
	}
)

// SetResponseHeaders adds default headers to HTTP responses.
func SetResponseHeaders(w http.ResponseWriter, r *http.Request, next http.Handler) {
	headers := w.Header()

	maps.Insert(headers, maps.All(baseHeaders))

	if config.Global.Development.InDevelopment {
		invalidateCacheInDevelopment(headers)
	}

	setCacheControl(headers, r.URL.Path)

	headers.Set("Pinmark-Version", config.BuildVersion)
	headers.Set("Pinmark-Revision", config.Global.Build.Revision())

	next.ServeHTTP(w, r)
}

var devCacheCleared atomic.Bool

// clear the browser cache once per process in development
func invalidateCacheInDevelopment(headers http.Header) {
	if devCacheCleared.CompareAndSwap(false, true) {
		headers.Set("Clear-Site-Data", `"cache"`)
	}
}

// setCacheControl sets appropriate cache control headers for static assets.
func setCacheControl(headers http.Header, path string) {
	// pages depend on the session
	cacheDuration := "private, no-cache"

	// JavaScript and CSS get a moderate cache time (1 week)
	if strings.HasPrefix(path, "/js/") || strings.HasPrefix(path, "/css/") {
		cacheDuration = "max-age=604800"
	}

	// uploaded files never change under the same name (2 weeks)
	if strings.HasPrefix(path, "/media/") {
		cacheDuration = "max-age=1209600"
	}

	headers.Set("Cache-Control", cacheDuration)
}
