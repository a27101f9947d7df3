// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Pinmark is a self-hosted image bookmarking site.
*/
package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"codeberg.org/pinmark/pinmark/config"
	"codeberg.org/pinmark/pinmark/core/audit"
	"codeberg.org/pinmark/pinmark/core/ranking"
	"codeberg.org/pinmark/pinmark/core/requests"
	"codeberg.org/pinmark/pinmark/core/store"
	"codeberg.org/pinmark/pinmark/i18n"
	"codeberg.org/pinmark/pinmark/server/api"
	"codeberg.org/pinmark/pinmark/server/assets"
	"codeberg.org/pinmark/pinmark/server/router"
	"codeberg.org/pinmark/pinmark/server/routes"
)

const (
	// Values for http.Server timeouts.
	// ref: gosec: G112
	readHeaderTimeout time.Duration = 15 * time.Second
	readTimeout       time.Duration = 15 * time.Second
	// image downloads happen inside the request
	writeTimeout time.Duration = 45 * time.Second
	idleTimeout  time.Duration = 30 * time.Second

	serverShutdownDeadline time.Duration = 5 * time.Second

	mediaDirPermissions = 0o750
)

// embeddedContent holds our static web server content.
//
//go:embed assets/css assets/js
//go:embed all:po
var embeddedContent embed.FS

// init assigns the embedded filesystem to the exported assets.FS variable.
//
//nolint:gochecknoinits // this is a good use of init()
func init() {
	assets.FS = embeddedContent
}

// main is the entry point of the application.
func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Application failed")
	}
}

// run orchestrates the application startup and graceful shutdown.
//
//nolint:funlen
func run() error {
	audit.SetDefaultLogger()

	if err := config.Global.LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := i18n.Setup(); err != nil {
		return fmt.Errorf("failed to initialize i18n engine: %w", err)
	}

	log.Info().Msg("Initialized i18n engine")

	// Initialize the bookmarklet page cache
	if err := requests.Setup(); err != nil {
		return fmt.Errorf("failed to initialize page cache: %w", err)
	}

	if err := os.MkdirAll(config.Global.Media.Root, mediaDirPermissions); err != nil {
		return fmt.Errorf("failed to create media root: %w", err)
	}

	ctx := context.Background()

	st, err := store.Open(ctx, config.Global.Database.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	rk := ranking.New(ranking.Options{
		Addr:     config.Global.Redis.Addr,
		Password: config.Global.Redis.Password,
		DB:       config.Global.Redis.DB,
	})
	defer rk.Close()

	// views are best effort, so an unreachable Redis is not fatal
	if err := rk.Ping(ctx); err != nil {
		log.Warn().
			Err(err).
			Str("addr", config.Global.Redis.Addr).
			Msg("Redis is unreachable, view counts will be missing")
	}

	if !config.Global.Development.InDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}

	router := router.NewRouter()
	router.DefineRoutes(routes.NewApp(st, rk), api.New(api.NewHandlers(st, rk)))
	router.RegisterMiddleware(st)

	// Create http.Server instance
	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	// Channel to listen for server errors
	serverErrors := make(chan error, 1)

	// Start main server in a goroutine
	go func() {
		listener, err := listen()
		if err != nil {
			serverErrors <- fmt.Errorf("failed to create listener: %w", err)

			return
		}

		serverErrors <- server.Serve(listener)
	}()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until a shutdown signal or a server error is received
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case s := <-quit:
		log.Info().Str("signal", s.String()).Msg("Shutdown signal received")
		log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), serverShutdownDeadline)

		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
	}

	log.Info().Msg("Server exited gracefully")

	return nil
}

func listen() (net.Listener, error) {
	addr := net.JoinHostPort(config.Global.Basic.Host, config.Global.Basic.Port)

	tcpListener, err := (&net.ListenConfig{}).Listen(context.Background(), "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start TCP listener on %v: %w", addr, err)
	}

	addr = tcpListener.Addr().String()

	// Extract the port for logging
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		_ = tcpListener.Close()

		return nil, fmt.Errorf("failed to parse listener address %q: %w", addr, err)
	}

	log.Info().
		Str("address", addr).
		Str("port", port).
		Str("url", fmt.Sprintf("http://localhost:%v/", port)).
		Msg("Listening on address")

	return tcpListener, nil
}
