// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package assets provides access to the application's embedded static assets.
*/
package assets

import (
	"io/fs"
)

// FS provides access to the embedded file system.
//
// It is assigned by package main; tests may substitute any fs.FS rooted
// the same way (with "assets/" and "po/" at the top level).
var FS fs.FS
