// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"errors"
	"maps"
	"net/http"
	"net/http/httptest"
	"net/url"

	"github.com/rs/zerolog/log"

	"codeberg.org/pinmark/pinmark/config"
	"codeberg.org/pinmark/pinmark/core/audit"
	"codeberg.org/pinmark/pinmark/server/request_context"
	"codeberg.org/pinmark/pinmark/server/routes"
)

// LoginPath is where anonymous users are sent by routes that require a session.
const LoginPath = "/account/login"

var errCSRFFailed = errors.New("CSRF verification failed")

// CatchError wraps HTTP handlers that return an error, providing centralized error handling,
// response buffering, and request logging.
//
// The handler's output is buffered using an httptest.ResponseRecorder. Afterwards:
//   - A routes.UnauthorizedError redirects to the login page with a next
//     parameter. htmx requests get a 401 carrying an HX-Redirect header instead,
//     so the whole page navigates rather than swapping the login form into a fragment.
//   - Any other error without an HTTP error status code (status < 400) is
//     treated as an internal error and replaced with the 500 page.
//   - A 404 written by the handler is replaced with the themed not found page.
//   - Anything else is copied to the client as is.
//
// Finally, it logs the completed request via the audit package.
func CatchError(handler func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := request_context.FromRequest(r)

		span := audit.Span{
			Destination: audit.ToUser,
			RequestID:   ctx.RequestID,
			Method:      r.Method,
			URL:         r.URL.String(),
		}

		_ = span.Begin(r.Context())

		recorder := httptest.NewRecorder()

		err := handler(recorder, r)

		ctx.RequestError = err

		var unauthErr *routes.UnauthorizedError
		switch {
		case errors.As(ctx.RequestError, &unauthErr):
			// the login flow is not an error worth logging at error level
			ctx.RequestError = nil
			redirectToLogin(w, r, unauthErr.Next)

		case (ctx.RequestError != nil && recorder.Code < http.StatusBadRequest) || (recorder.Code == http.StatusNotFound):
			status := http.StatusInternalServerError
			if recorder.Code == http.StatusNotFound {
				status = http.StatusNotFound
			}

			RenderStatus(w, r, status, ctx.RequestError)

		default:
			ctx.StatusCode = recorder.Code
			maps.Copy(w.Header(), recorder.Header())
			w.WriteHeader(recorder.Code)

			n, err := recorder.Body.WriteTo(w)
			if err != nil {
				log.Err(err).Msg("Failed to write response body")
			}

			span.Size = int(n)
		}

		span.End()

		span.StatusCode = ctx.StatusCode
		span.Error = ctx.RequestError

		if !config.Global.ShouldSkipServerLogging(r.URL.Path) {
			span.Log()
		}
	}
}

// RenderStatus replaces the response with the themed error page for status.
func RenderStatus(w http.ResponseWriter, r *http.Request, status int, err error) {
	ctx := request_context.FromRequest(r)
	ctx.StatusCode = status

	if err != nil {
		ctx.RequestError = err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	routes.ErrorPage(w, r)
}

func redirectToLogin(w http.ResponseWriter, r *http.Request, next string) {
	ctx := request_context.FromRequest(r)

	switch {
	case next != "":
	case ctx.CommonData.IsHtmxRequest && ctx.CommonData.HtmxCurrentPath != "":
		// the fragment endpoint itself is not worth returning to
		next = ctx.CommonData.HtmxCurrentPath
	default:
		next = r.URL.RequestURI()
	}

	target := LoginPath + "?" + url.Values{"next": {next}}.Encode()

	if ctx.CommonData.IsHtmxRequest {
		ctx.StatusCode = http.StatusUnauthorized
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(ctx.StatusCode)

		return
	}

	ctx.StatusCode = http.StatusFound
	http.Redirect(w, r, target, ctx.StatusCode)
}
