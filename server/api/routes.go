// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Prefix is where the API is mounted.
const Prefix = "/api/v1"

// RegisterRoutes registers the API endpoints on rg.
//
//	GET /images       paginated image list, login required
//	GET /images/:id   image with like and view counts
//	GET /ranking      most viewed images
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.GET("/images", h.RequireUser, h.HandleImages)
	rg.GET("/images/:id", h.HandleImage)
	rg.GET("/ranking", h.HandleRanking)
}

// New returns an http.Handler serving the API under Prefix.
func New(h *Handlers) http.Handler {
	engine := gin.New()
	engine.RedirectTrailingSlash = false
	engine.HandleMethodNotAllowed = true

	engine.Use(logRequests, gin.CustomRecovery(recoverJSON))

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no such endpoint", Code: CodeNotFound})
	})

	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
	})

	RegisterRoutes(engine.Group(Prefix), h)

	return engine
}
