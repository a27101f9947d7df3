// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"codeberg.org/pinmark/pinmark/config"
	"codeberg.org/pinmark/pinmark/core/audit"
	"codeberg.org/pinmark/pinmark/core/session"
	"codeberg.org/pinmark/pinmark/core/store"
	"codeberg.org/pinmark/pinmark/server/request_context"
)

const userKey = "pinmark.user"

// logRequests records every API request as an audit span.
func logRequests(c *gin.Context) {
	span := audit.Span{
		Destination: audit.ToUser,
		RequestID:   request_context.FromRequest(c.Request).RequestID,
		Method:      c.Request.Method,
		URL:         c.Request.URL.String(),
	}

	_ = span.Begin(c.Request.Context())

	c.Next()

	span.End()
	span.StatusCode = c.Writer.Status()
	span.Size = max(c.Writer.Size(), 0)

	if last := c.Errors.Last(); last != nil {
		span.Error = last.Err
	}

	if !config.Global.ShouldSkipServerLogging(c.Request.URL.Path) {
		span.Log()
	}
}

func recoverJSON(c *gin.Context, recovered any) {
	_ = c.Error(fmt.Errorf("panic: %v", recovered))

	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error: http.StatusText(http.StatusInternalServerError),
		Code:  CodeInternal,
	})
}

// RequireUser aborts with 401 unless the session cookie names an active user.
func (h *Handlers) RequireUser(c *gin.Context) {
	id, ok := session.UserID(c.Request)
	if !ok {
		abortUnauthenticated(c)

		return
	}

	user, err := h.Store.UserByID(c.Request.Context(), id)

	switch {
	case errors.Is(err, store.ErrNotFound):
		abortUnauthenticated(c)

		return
	case err != nil:
		abortInternal(c, err)

		return
	case !user.IsActive:
		abortUnauthenticated(c)

		return
	}

	c.Set(userKey, user)
	c.Next()
}

// currentUser returns the user stored by RequireUser.
func currentUser(c *gin.Context) (store.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return store.User{}, false
	}

	user, ok := v.(store.User)

	return user, ok
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Error: "authentication required",
		Code:  CodeUnauthenticated,
	})
}

func abortInternal(c *gin.Context, err error) {
	_ = c.Error(err)

	log.Err(err).
		Str("path", c.Request.URL.Path).
		Msg("API request failed")

	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error: http.StatusText(http.StatusInternalServerError),
		Code:  CodeInternal,
	})
}
