// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"
	"slices"
	"strings"
)

// directoryPaths are the index pages whose canonical form keeps a trailing slash.
var directoryPaths = []string{
	"/account/",
	"/images/",
}

// NormalizeURL is a middleware that handles URL normalization by:
// 1. Appending the slash to directory index pages ("/images" -> "/images/").
// 2. Removing trailing slashes from every other URL (except root).
func NormalizeURL(w http.ResponseWriter, r *http.Request, next http.Handler) {
	if isBareDirectory(r) {
		redirectToPath(w, r, r.URL.Path+"/")

		return
	}

	if hasTrailingSlash(r) {
		redirectToPath(w, r, strings.TrimRight(r.URL.Path, "/"))

		return
	}

	next.ServeHTTP(w, r)
}

func isBareDirectory(r *http.Request) bool {
	return slices.Contains(directoryPaths, r.URL.Path+"/")
}

// hasTrailingSlash checks if a request path has a trailing slash that is not canonical.
func hasTrailingSlash(r *http.Request) bool {
	path := r.URL.Path

	if path == "/" || !strings.HasSuffix(path, "/") {
		return false
	}

	if slices.Contains(directoryPaths, path) {
		return false
	}

	// file server directories
	return !strings.HasPrefix(path, "/css/") && !strings.HasPrefix(path, "/media/")
}

// redirectToPath keeps the query string. 308 preserves the method of form posts.
func redirectToPath(w http.ResponseWriter, r *http.Request, path string) {
	target := *r.URL
	target.Path = path
	target.RawPath = ""

	if target.Path == "" {
		target.Path = "/"
	}

	http.Redirect(w, r, target.String(), http.StatusPermanentRedirect)
}
