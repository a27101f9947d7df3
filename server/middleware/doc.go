// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package middleware holds the request pipeline shared by every route: URL
normalization, response headers, server timing, session loading, CSRF
verification and the CatchError adapter for error-returning handlers.

The chain itself is assembled in router.RegisterMiddleware.
*/
package middleware
