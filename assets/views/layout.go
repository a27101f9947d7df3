// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package views holds the full-page components rendered by server/routes.

Each page takes a <Name>Data struct and renders itself inside Layout, which
draws the navigation for the logged in user and the pending flash messages.
*/
package views

import (
	"github.com/a-h/templ"

	"codeberg.org/pinmark/pinmark/assets/components/fragments"
	"codeberg.org/pinmark/pinmark/config"
)

// Navigation sections.
const (
	SectionDashboard = "dashboard"
	SectionImages    = "images"
	SectionRanking   = "ranking"
)

var menu = []struct {
	section string
	href    string
	label   string
}{
	{SectionDashboard, "/account/", "Dashboard"},
	{SectionImages, "/images/", "Images"},
	{SectionRanking, "/images/ranking", "Ranking"},
}

// Text is an escaped, untranslated string as a component.
func Text(s string) templ.Component {
	return fragments.Func(func(p *fragments.Printer) { p.Text(s) })
}

// Layout wraps body in the site chrome.
func Layout(title, body templ.Component) templ.Component {
	return fragments.Func(func(p *fragments.Printer) {
		cd := p.Common()

		p.Raw(`<!DOCTYPE html><html lang="`)
		p.Text(cd.Lang)
		p.Raw(`"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<meta name="csrf-token" content="`)
		p.Text(cd.CSRFToken)
		p.Raw(`"><title>`)
		p.Component(title)
		p.Raw(` · Pinmark</title>`,
			`<link rel="stylesheet" href="/css/site.css?v=`, config.Global.Instance.FileServerCacheID, `">`,
			`<script src="/js/pinmark.js?v=`, config.Global.Instance.FileServerCacheID, `" defer></script>`,
			`</head><body><header id="header"><a href="/" class="logo">Pinmark</a>`)

		if cd.LoggedIn() {
			p.Raw(`<ul class="menu">`)

			for _, item := range menu {
				if item.section == cd.Section {
					p.Raw(`<li class="selected">`)
				} else {
					p.Raw(`<li>`)
				}

				p.Raw(`<a href="`, item.href, `">`)
				p.Tr(item.label)
				p.Raw(`</a></li>`)
			}

			p.Raw(`</ul><span class="user">`)
			p.Text(cd.User.DisplayName())
			p.Raw(` <a href="/account/edit">`)
			p.Tr("Edit your profile")
			p.Raw(`</a><form method="post" action="/account/logout" class="inline">`)
			p.Component(fragments.CSRFInput())
			p.Raw(`<button type="submit" class="link">`)
			p.Tr("Log out")
			p.Raw(`</button></form></span>`)
		} else {
			p.Raw(`<span class="user"><a href="/account/login">`)
			p.Tr("Log in")
			p.Raw(`</a></span>`)
		}

		p.Raw(`</header>`)

		if len(cd.Messages) > 0 {
			p.Raw(`<ul class="messages">`)

			for _, msg := range cd.Messages {
				p.Raw(`<li class="`, string(msg.Level), `">`)
				p.Text(msg.Text)
				p.Raw(`</li>`)
			}

			p.Raw(`</ul>`)
		}

		p.Raw(`<main id="content">`)
		p.Component(body)
		p.Raw(`</main></body></html>`)
	})
}
