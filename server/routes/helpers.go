// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	"codeberg.org/pinmark/pinmark/core/session"
	"codeberg.org/pinmark/pinmark/core/store"
	"codeberg.org/pinmark/pinmark/i18n"
	"codeberg.org/pinmark/pinmark/server/request_context"
	"codeberg.org/pinmark/pinmark/server/utils"
)

// render writes a full page, showing the pending flash messages.
func render(w http.ResponseWriter, r *http.Request, section string, page templ.Component) error {
	cd := &request_context.FromRequest(r).CommonData
	cd.Section = section
	cd.Messages = append(session.PopFlashes(w, r), cd.Messages...)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	return page.Render(r.Context(), w)
}

// renderPartial writes an htmx fragment. Flash messages stay queued.
func renderPartial(w http.ResponseWriter, r *http.Request, fragment templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	return fragment.Render(r.Context(), w)
}

// requireUser returns the logged in user or an UnauthorizedError.
func requireUser(r *http.Request) (store.User, error) {
	if user := request_context.FromRequest(r).CommonData.User; user != nil {
		return *user, nil
	}

	return store.User{}, NewUnauthorizedError("")
}

// flash queues msg for the page after a redirect.
func flash(w http.ResponseWriter, r *http.Request, level session.Level, msg i18n.MsgKey) {
	session.AddFlash(w, r, session.Message{Level: level, Text: msg.Tr(r.Context())})
}

// notify shows msg on the page rendered by this request.
func notify(r *http.Request, level session.Level, msg i18n.MsgKey) {
	cd := &request_context.FromRequest(r).CommonData
	cd.Messages = append(cd.Messages, session.Message{Level: level, Text: msg.Tr(r.Context())})
}

// pathID parses the positive integer path variable name.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(utils.GetPathVar(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}

// seeOther redirects after a successful form post.
func seeOther(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}
