// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package template holds presentation helpers shared by the views.
*/
package template

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"

	"codeberg.org/pinmark/pinmark/i18n"
)

// Unit is a calendar unit used to describe elapsed time.
type Unit int

const (
	Year Unit = iota
	Month
	Week
	Day
	Hour
	Minute
)

const (
	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day
	year  = 365 * day
)

var chunks = []struct {
	unit Unit
	size time.Duration
}{
	{Year, year},
	{Month, month},
	{Week, week},
	{Day, day},
	{Hour, time.Hour},
	{Minute, time.Minute},
}

// Elapsed is a count of one Unit.
type Elapsed struct {
	Count int
	Unit  Unit
}

// timeNow is replaced in tests.
var timeNow = time.Now

// TimeSince splits the time between t and now into at most two adjacent
// units, largest first: "2 weeks, 3 days" but never "2 weeks, 3 hours".
//
// Anything under a minute, including times in the future, is zero minutes.
func TimeSince(t, now time.Time) []Elapsed {
	d := now.Sub(t)

	for i, c := range chunks {
		count := int(d / c.size)
		if count == 0 {
			continue
		}

		out := []Elapsed{{Count: count, Unit: c.unit}}

		if i+1 < len(chunks) {
			next := chunks[i+1]
			if rest := int((d - time.Duration(count)*c.size) / next.size); rest > 0 {
				out = append(out, Elapsed{Count: rest, Unit: next.unit})
			}
		}

		return out
	}

	return []Elapsed{{Count: 0, Unit: Minute}}
}

// Tr renders e in the language of ctx.
func (e Elapsed) Tr(ctx context.Context) string {
	switch e.Unit {
	case Year:
		return i18n.TrN(ctx, "{{.Count}} year", "{{.Count}} years", e.Count, "Count", e.Count)
	case Month:
		return i18n.TrN(ctx, "{{.Count}} month", "{{.Count}} months", e.Count, "Count", e.Count)
	case Week:
		return i18n.TrN(ctx, "{{.Count}} week", "{{.Count}} weeks", e.Count, "Count", e.Count)
	case Day:
		return i18n.TrN(ctx, "{{.Count}} day", "{{.Count}} days", e.Count, "Count", e.Count)
	case Hour:
		return i18n.TrN(ctx, "{{.Count}} hour", "{{.Count}} hours", e.Count, "Count", e.Count)
	default:
		return i18n.TrN(ctx, "{{.Count}} minute", "{{.Count}} minutes", e.Count, "Count", e.Count)
	}
}

// Since describes the time elapsed since t, e.g. "3 days, 2 hours".
func Since(ctx context.Context, t time.Time) string {
	parts := TimeSince(t, timeNow())

	out := make([]string, len(parts))
	for i, e := range parts {
		out[i] = e.Tr(ctx)
	}

	return strings.Join(out, ", ")
}

// NaturalTime formats t as a full date for tooltips.
func NaturalTime(t time.Time) string {
	return t.Format("Monday, 2 January 2006, 15:04")
}

// Ago renders a <time> element reading "<elapsed> ago".
func Ago(t time.Time) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		text := i18n.Tr(ctx, "{{.Duration}} ago", "Duration", Since(ctx, t))

		_, err := io.WriteString(w, `<time datetime="`+t.UTC().Format(time.RFC3339)+
			`" title="`+templ.EscapeString(NaturalTime(t))+`">`+templ.EscapeString(text)+`</time>`)

		return err
	})
}
