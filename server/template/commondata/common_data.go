// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package commondata

import (
	"net/http"
	"net/url"

	"codeberg.org/pinmark/pinmark/core/session"
	"codeberg.org/pinmark/pinmark/core/store"
	"codeberg.org/pinmark/pinmark/server/utils"
)

// PageCommonData holds common variables accessible in templates and handlers.
//
// It is populated for each request and attached to the request context.
// User and CSRFToken are filled in later by middleware, Messages and Section
// by the handler right before rendering.
type PageCommonData struct {
	// BaseURL is the origin URL (scheme + host) of the current request.
	BaseURL string

	// CurrentPath is the URL path from request (e.g., "/images/").
	CurrentPath string

	// CurrentPathWithParams is the full request URI including query parameters.
	CurrentPathWithParams string

	// HtmxCurrentPath is the path parsed from HX-Current-URL header for htmx requests.
	HtmxCurrentPath string

	// IsHtmxRequest is true if request has an HX-Request header set to "true".
	IsHtmxRequest bool

	// User is the logged in user, nil for anonymous requests.
	User *store.User

	CSRFToken string

	// Messages are the flash messages shown at the top of the page.
	Messages []session.Message

	// Section selects the highlighted navigation entry.
	Section string

	// Lang is the BCP 47 tag of the response language.
	Lang string
}

// LoggedIn reports whether the request carries a valid session.
func (cd PageCommonData) LoggedIn() bool {
	return cd.User != nil
}

// PopulatePageCommonData fills the PageCommonData struct from the request.
func PopulatePageCommonData(r *http.Request, data *PageCommonData) {
	data.BaseURL = utils.GetOriginFromRequest(r)
	data.CurrentPath = r.URL.Path
	data.CurrentPathWithParams = r.URL.RequestURI()

	if htmxCurrentURL := r.Header.Get("HX-Current-URL"); htmxCurrentURL != "" {
		if parsedURL, err := url.Parse(htmxCurrentURL); err == nil {
			data.HtmxCurrentPath = parsedURL.Path
		}
	}

	data.IsHtmxRequest = utils.IsHtmxRequest(r)
}
