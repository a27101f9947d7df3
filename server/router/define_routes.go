// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"fmt"
	"io/fs"
	"net/http"
	"net/http/pprof"
	"runtime/trace"
	"time"

	"codeberg.org/pinmark/pinmark/config"
	"codeberg.org/pinmark/pinmark/server/api"
	"codeberg.org/pinmark/pinmark/server/assets"
	"codeberg.org/pinmark/pinmark/server/middleware"
	"codeberg.org/pinmark/pinmark/server/routes"
)

// DefineRoutes sets up all the routes of the application. apiHandler serves
// everything under api.Prefix.
func (router *Router) DefineRoutes(app *routes.App, apiHandler http.Handler) {
	fileServerHandler := fileServer()

	// Patterns ending in "/" are prefix matches.
	router.Handle("GET /css/", fileServerHandler)
	router.Handle("GET /js/", fileServerHandler)

	router.Handle("GET /media/", middleware.CatchError(StripPrefix("/media/", routes.Media(config.Global.Media.Root))))

	router.Handle(api.Prefix+"/", apiHandler)

	// /{$} matches only the root path
	router.HandleFunc("GET /{$}", middleware.CatchError(app.IndexPage))

	// Account routes
	router.HandleFunc("GET /account/login", middleware.CatchError(app.LoginPage))
	router.HandleFunc("POST /account/login", middleware.CatchError(app.LoginPage))
	router.HandleFunc("POST /account/logout", middleware.CatchError(app.Logout))
	router.HandleFunc("GET /account/register", middleware.CatchError(app.Register))
	router.HandleFunc("POST /account/register", middleware.CatchError(app.Register))
	router.HandleFunc("GET /account/edit", middleware.CatchError(app.EditProfile))
	router.HandleFunc("POST /account/edit", middleware.CatchError(app.EditProfile))
	router.HandleFunc("GET /account/{$}", middleware.CatchError(app.Dashboard))

	// Image routes
	router.HandleFunc("GET /images/create", middleware.CatchError(app.ImageCreate))
	router.HandleFunc("POST /images/create", middleware.CatchError(app.ImageCreate))
	router.HandleFunc("GET /images/discover", middleware.CatchError(app.ImageDiscover))
	router.HandleFunc("GET /images/detail/{id}/{slug}", middleware.CatchError(app.ImageDetail))
	router.HandleFunc("POST /images/like/{id}", middleware.CatchError(app.ImageLike))
	router.HandleFunc("GET /images/ranking", middleware.CatchError(app.ImageRanking))
	router.HandleFunc("GET /images/{$}", middleware.CatchError(app.ImageList))

	// everything else gets the themed not found page
	router.HandleFunc("/", middleware.CatchError(func(w http.ResponseWriter, r *http.Request) error {
		http.NotFound(w, r)

		return nil
	}))

	if config.Global.Development.InDevelopment {
		registerDebugRoutes(router)
	}
}

// Serve static files from embedded assets.
func fileServer() http.HandlerFunc {
	staticContentFS, err := fs.Sub(assets.FS, "assets")
	if err != nil {
		panic(fmt.Errorf("failed to create sub-filesystem for embedded 'assets' directory: %w", err))
	}

	fileServer := http.FileServer(http.FS(staticContentFS))
	fileServerHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Using a strong ETag for static files embedded via go:embed
		// ref: https://www.rfc-editor.org/rfc/rfc9110#weak.and.strong.validators
		//
		// Since go:embed requires rebuilding when files change, we use a per-instance
		// cache ID to ensure browsers fetch fresh content after any deployment.
		w.Header().Set("ETag", config.Global.Instance.FileServerCacheID)
		fileServer.ServeHTTP(w, r)
	})

	return fileServerHandler
}

var flightRecorder = trace.NewFlightRecorder(trace.FlightRecorderConfig{MinAge: time.Minute})

func registerDebugRoutes(router *Router) {
	if !flightRecorder.Enabled() {
		if err := flightRecorder.Start(); err != nil {
			panic(err)
		}
	}

	router.HandleFunc("GET /debug/pprof/", pprof.Index)
	router.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
	router.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	router.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	router.HandleFunc("GET /debug/pprof/trace", pprof.Trace)
	router.HandleFunc("GET /debug/flight", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = flightRecorder.WriteTo(w)
	})
}
