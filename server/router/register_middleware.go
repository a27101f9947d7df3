// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"codeberg.org/pinmark/pinmark/config"
	"codeberg.org/pinmark/pinmark/server/middleware"
	"codeberg.org/pinmark/pinmark/server/middleware/limiter"
	"codeberg.org/pinmark/pinmark/server/middleware/set_request_context"
)

// ThrottledPaths are the form posts counted by the login limiter.
var ThrottledPaths = []string{"/account/login", "/account/register"}

// RegisterMiddleware installs the middleware chain. users resolves the
// session cookie to a user.
func (router *Router) RegisterMiddleware(users middleware.UserLoader) {
	// the first middleware is the most outer / first executed one
	router.Use(middleware.WithServerTiming)
	router.Use(middleware.NormalizeURL)                // handle trailing slashes
	router.Use(set_request_context.WithRequestContext) // needed for everything else
	router.Use(middleware.SetResponseHeaders)          // all pages need this

	if config.Global.Limiter.Enabled {
		router.Use(limiter.New(config.Global.Limiter.Attempts, config.Global.Limiter.Window, ThrottledPaths...).Evaluate)
	}

	router.Use(middleware.LoadUser(users))
	router.Use(middleware.CSRF)
}
