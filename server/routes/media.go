// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"io/fs"
	"net/http"
	"os"
	"strings"
)

// Media serves uploaded files from root. The request path must already be
// relative to root. Directories are never listed.
func Media(root string) func(w http.ResponseWriter, r *http.Request) error {
	fsys := os.DirFS(root)

	return func(w http.ResponseWriter, r *http.Request) error {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if !fs.ValidPath(name) || name == "." {
			http.NotFound(w, r)

			return nil
		}

		info, err := fs.Stat(fsys, name)
		if err != nil || info.IsDir() {
			http.NotFound(w, r)

			return nil
		}

		http.ServeFileFS(w, r, fsys, name)

		return nil
	}
}
