// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package fragments holds the building blocks shared by the page components
in assets/views and assets/components/partials.
*/
package fragments

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"codeberg.org/pinmark/pinmark/i18n"
	"codeberg.org/pinmark/pinmark/server/template/commondata"
)

// Printer writes HTML to w and keeps the first write error.
//
// Every method is a no-op once an error occurred, so components can write
// sequentially and check Err once at the end.
type Printer struct {
	ctx context.Context
	w   io.Writer
	err error
}

// NewPrinter returns a Printer translating with the locale of ctx.
func NewPrinter(ctx context.Context, w io.Writer) *Printer {
	return &Printer{ctx: ctx, w: w}
}

// Raw writes trusted markup.
func (p *Printer) Raw(parts ...string) {
	for _, s := range parts {
		if p.err != nil {
			return
		}

		_, p.err = io.WriteString(p.w, s)
	}
}

// Text writes s escaped for element content and quoted attributes.
func (p *Printer) Text(s string) {
	p.Raw(templ.EscapeString(s))
}

// Int writes n in decimal.
func (p *Printer) Int(n int64) {
	p.Raw(strconv.FormatInt(n, 10))
}

// URL writes an attribute-safe URL. Schemes other than http, https, mailto
// and tel are replaced by templ's placeholder.
func (p *Printer) URL(s string) {
	p.Text(string(templ.URL(s)))
}

// Tr writes the escaped translation of msgid.
func (p *Printer) Tr(msgid string, kv ...any) {
	p.Text(i18n.Tr(p.ctx, msgid, kv...))
}

// TrN writes the escaped plural translation for n.
func (p *Printer) TrN(singular, plural string, n int, kv ...any) {
	p.Text(i18n.TrN(p.ctx, singular, plural, n, kv...))
}

// Component renders c in place.
func (p *Printer) Component(c templ.Component) {
	if p.err != nil || c == nil {
		return
	}

	p.err = c.Render(p.ctx, p.w)
}

// Common returns the page data of the request being rendered.
func (p *Printer) Common() commondata.PageCommonData {
	return CommonData(p.ctx)
}

// Err returns the first error encountered.
func (p *Printer) Err() error {
	return p.err
}

// Func builds a component from a function writing through a Printer.
func Func(fn func(p *Printer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := NewPrinter(ctx, w)
		fn(p)

		return p.Err()
	})
}
