// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"codeberg.org/pinmark/pinmark/assets/views"
	"codeberg.org/pinmark/pinmark/server/request_context"
)

// ErrorPage renders the error page for the status and error in the request context.
//
// Headers must already be written by the caller.
func ErrorPage(w http.ResponseWriter, r *http.Request) {
	rc := request_context.FromRequest(r)

	pageData := views.ErrorData{
		Error:      rc.RequestError,
		StatusCode: rc.StatusCode,
	}

	if err := views.Error(pageData).Render(r.Context(), w); err != nil {
		log.Err(err).
			Str("request_id", rc.RequestID).
			Msg("Failed to render the error page")
	}
}
