// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Django and Duke", "django-and-duke"},
		{"  Café   au lait  ", "cafe-au-lait"},
		{"Hello, World!", "hello-world"},
		{"snake_case -- title", "snake_case-title"},
		{"__edges__", "edges"},
		{"Кошка", Fallback},
		{"", Fallback},
		{"Кошка cat 2", "cat-2"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}
