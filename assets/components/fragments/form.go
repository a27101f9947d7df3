// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package fragments

import (
	"github.com/a-h/templ"

	"codeberg.org/pinmark/pinmark/core/forms"
	"codeberg.org/pinmark/pinmark/core/session"
	"codeberg.org/pinmark/pinmark/i18n"
)

// Input describes one form field.
type Input struct {
	Label i18n.MsgKey
	Name  string
	// text, password, email, url or textarea
	Type   string
	Value  string
	Errors []i18n.MsgKey
}

// CSRFInput is the hidden token field every POST form carries.
func CSRFInput() templ.Component {
	return Func(func(p *Printer) {
		p.Raw(`<input type="hidden" name="`, session.CSRFField, `" value="`)
		p.Text(p.Common().CSRFToken)
		p.Raw(`">`)
	})
}

// Field renders a labelled input with its validation messages.
func Field(in Input) templ.Component {
	return Func(func(p *Printer) {
		p.Raw(`<p class="field`)

		if len(in.Errors) > 0 {
			p.Raw(` invalid`)
		}

		p.Raw(`"><label for="id_`, in.Name, `">`)
		p.Component(in.Label)
		p.Raw(`</label>`)

		if in.Type == "textarea" {
			p.Raw(`<textarea id="id_`, in.Name, `" name="`, in.Name, `">`)
			p.Text(in.Value)
			p.Raw(`</textarea>`)
		} else {
			p.Raw(`<input id="id_`, in.Name, `" type="`, in.Type, `" name="`, in.Name, `"`)

			// passwords are never echoed back
			if in.Type != "password" {
				p.Raw(` value="`)
				p.Text(in.Value)
				p.Raw(`"`)
			}

			p.Raw(`>`)
		}

		p.Component(ErrorList(in.Errors))
		p.Raw(`</p>`)
	})
}

// ErrorList renders messages as a list, or nothing when empty.
func ErrorList(msgs []i18n.MsgKey) templ.Component {
	return Func(func(p *Printer) {
		if len(msgs) == 0 {
			return
		}

		p.Raw(`<ul class="errorlist">`)

		for _, msg := range msgs {
			p.Raw(`<li>`)
			p.Component(msg)
			p.Raw(`</li>`)
		}

		p.Raw(`</ul>`)
	})
}

// NonFieldErrors renders the errors that belong to the form as a whole.
func NonFieldErrors(errs forms.Errors) templ.Component {
	return ErrorList(errs.Get(forms.NonField))
}
