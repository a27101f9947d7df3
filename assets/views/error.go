// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package views

import (
	"net/http"

	"github.com/a-h/templ"

	"codeberg.org/pinmark/pinmark/assets/components/fragments"
	"codeberg.org/pinmark/pinmark/config"
	"codeberg.org/pinmark/pinmark/i18n"
)

// ErrorData is the error page.
type ErrorData struct {
	StatusCode int
	Error      error
}

func errorTitle(status int) i18n.MsgKey {
	switch status {
	case http.StatusNotFound:
		return "Page not found"
	case http.StatusForbidden:
		return "Forbidden"
	default:
		return "Something went wrong"
	}
}

// Error renders the themed error page. Error details are only shown in development.
func Error(data ErrorData) templ.Component {
	title := errorTitle(data.StatusCode)

	return Layout(title, fragments.Func(func(p *fragments.Printer) {
		p.Raw(`<h1>`)
		p.Component(title)
		p.Raw(`</h1>`)

		if data.Error != nil && config.Global.Development.InDevelopment {
			p.Raw(`<pre class="error">`)
			p.Text(data.Error.Error())
			p.Raw(`</pre>`)
		}

		p.Raw(`<p><a href="/">`)
		p.Tr("Go home")
		p.Raw(`</a></p>`)
	}))
}
