// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package forms holds per-field validation errors and the small set of field
checks shared by the HTML forms.

Validation failures are data, not errors: they are collected in [Errors]
and rendered next to the offending field.
*/
package forms

import (
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"

	"codeberg.org/pinmark/pinmark/i18n"
)

// NonField keys errors that belong to the form as a whole.
const NonField = "__all__"

// Common validation messages.
const (
	MsgRequired     i18n.MsgKey = "This field is required."
	MsgInvalidEmail i18n.MsgKey = "Enter a valid email address."
	MsgInvalidURL   i18n.MsgKey = "Enter a valid URL."
)

// Errors maps a field name to its validation messages.
type Errors map[string][]i18n.MsgKey

// Add appends msg to the errors of field.
func (e Errors) Add(field string, msg i18n.MsgKey) {
	e[field] = append(e[field], msg)
}

// Get returns the messages for field.
func (e Errors) Get(field string) []i18n.MsgKey {
	return e[field]
}

// Has reports whether field has at least one error.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// Valid reports whether no errors were recorded.
func (e Errors) Valid() bool {
	return len(e) == 0
}

// Value returns the trimmed form value of key.
func Value(values url.Values, key string) string {
	return strings.TrimSpace(values.Get(key))
}

// Required records MsgRequired on field when value is empty.
func (e Errors) Required(field, value string) bool {
	if value == "" {
		e.Add(field, MsgRequired)

		return false
	}

	return true
}

// MaxLength records msg on field when value has more than n characters.
func (e Errors) MaxLength(field, value string, n int, msg i18n.MsgKey) bool {
	if utf8.RuneCountInString(value) > n {
		e.Add(field, msg)

		return false
	}

	return true
}

// Email records MsgInvalidEmail on field unless value is a bare address.
//
// An empty value is accepted; pair with Required when the field is mandatory.
func (e Errors) Email(field, value string) bool {
	if value == "" {
		return true
	}

	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || !strings.Contains(value[strings.LastIndex(value, "@"):], ".") {
		e.Add(field, MsgInvalidEmail)

		return false
	}

	return true
}

// URL records MsgInvalidURL on field unless value is an absolute http(s) URL.
func (e Errors) URL(field, value string) bool {
	if value == "" {
		return true
	}

	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		e.Add(field, MsgInvalidURL)

		return false
	}

	return true
}
