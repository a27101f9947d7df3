// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package forms_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"codeberg.org/pinmark/pinmark/core/forms"
)

func TestEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		valid bool
	}{
		{"", true},
		{"ann@example.com", true},
		{"ann@localhost", false},
		{"Ann <ann@example.com>", false},
		{"not-an-email", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()

			errs := forms.Errors{}
			assert.Equal(t, tt.valid, errs.Email("email", tt.value))
			assert.Equal(t, tt.valid, errs.Valid())
		})
	}
}

func TestURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		valid bool
	}{
		{"https://example.com/a.png", true},
		{"http://example.com", true},
		{"ftp://example.com/a.png", false},
		{"/relative/a.png", false},
		{"https://", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()

			errs := forms.Errors{}
			assert.Equal(t, tt.valid, errs.URL("url", tt.value))
		})
	}
}

func TestErrors(t *testing.T) {
	t.Parallel()

	errs := forms.Errors{}
	assert.False(t, errs.Required("username", ""))
	assert.True(t, errs.Required("password", "x"))
	assert.False(t, errs.MaxLength("title", "abcd", 3, "too long"))

	assert.True(t, errs.Has("username"))
	assert.False(t, errs.Has("password"))
	assert.Equal(t, forms.MsgRequired, errs.Get("username")[0])
	assert.False(t, errs.Valid())

	values := url.Values{"title": {"  hi  "}}
	assert.Equal(t, "hi", forms.Value(values, "title"))
}
