// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package partials holds components that would otherwise be included under fragments/,
but are also rendered on their own by backend code as htmx responses.
*/
package partials

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.960 generate
