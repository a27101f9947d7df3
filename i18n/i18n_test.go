// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n_test

import (
	"context"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"codeberg.org/pinmark/pinmark/i18n"
	"codeberg.org/pinmark/pinmark/server/assets"
)

func TestMain(m *testing.M) {
	// The repository root has po/ at the top level, like the embedded FS.
	assets.FS = os.DirFS("..")

	if err := i18n.Setup(); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

func TestMsgKeyAsComponent(t *testing.T) {
	t.Parallel()

	var _ templ.Component = i18n.MsgKey("foo")
}

func TestTr(t *testing.T) {
	t.Parallel()

	ru := i18n.WithTag(context.Background(), language.Russian)
	en := i18n.WithTag(context.Background(), language.English)

	tests := []struct {
		name string
		ctx  context.Context
		id   string
		want string
	}{
		{name: "username ru", ctx: ru, id: "Username", want: "Логин"},
		{name: "password ru", ctx: ru, id: "Password", want: "Пароль"},
		{name: "repeat ru", ctx: ru, id: "Repeat password", want: "Повторите пароль"},
		{name: "english passthrough", ctx: en, id: "Username", want: "Username"},
		{name: "missing msgid", ctx: ru, id: "No such message", want: "No such message"},
		{name: "nil context", ctx: nil, id: "Password", want: "Password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, i18n.Tr(tt.ctx, tt.id))
		})
	}
}

func TestTrFormatting(t *testing.T) {
	t.Parallel()

	ru := i18n.WithTag(context.Background(), language.Russian)

	assert.Equal(t, "Welcome Ann!", i18n.Tr(context.Background(), "Welcome {{.Name}}!", "Name", "Ann"))
	assert.Equal(t, "Добро пожаловать, Ann!", i18n.Tr(ru, "Welcome {{.Name}}!", "Name", "Ann"))

	assert.Equal(t, "1 like", i18n.TrN(context.Background(), "{{.Count}} like", "{{.Count}} likes", 1, "Count", 1))
	assert.Equal(t, "3 likes", i18n.TrN(context.Background(), "{{.Count}} like", "{{.Count}} likes", 3, "Count", 3))
	assert.Equal(t, "5 просмотров", i18n.TrN(ru, "{{.Count}} view", "{{.Count}} views", 5, "Count", 5))
	assert.Equal(t, "2 просмотра", i18n.TrN(ru, "{{.Count}} view", "{{.Count}} views", 2, "Count", 2))
}

func TestFromRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
		cookie string
		header string
		want   string
	}{
		{name: "default", target: "/", want: "en"},
		{name: "header", target: "/", header: "ru-RU,ru;q=0.9", want: "ru"},
		{name: "cookie wins over header", target: "/", cookie: "en", header: "ru", want: "en"},
		{name: "query wins over cookie", target: "/?lang=ru", cookie: "en", want: "ru"},
		{name: "auto ignores cookie", target: "/?lang=auto", cookie: "ru", header: "en", want: "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest("GET", tt.target, nil)
			if tt.cookie != "" {
				r.Header.Set("Cookie", "Lang="+tt.cookie)
			}

			if tt.header != "" {
				r.Header.Set("Accept-Language", tt.header)
			}

			base, _ := i18n.FromRequest(r).Base()
			assert.Equal(t, tt.want, base.String())
		})
	}
}

func TestLanguages(t *testing.T) {
	t.Parallel()

	langs := i18n.Languages()
	require.GreaterOrEqual(t, len(langs), 2)
	assert.Contains(t, langs, language.Russian)
}
