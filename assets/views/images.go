// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package views

import (
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"codeberg.org/pinmark/pinmark/assets/components/fragments"
	"codeberg.org/pinmark/pinmark/assets/components/partials"
	"codeberg.org/pinmark/pinmark/core/discover"
	"codeberg.org/pinmark/pinmark/core/forms"
	"codeberg.org/pinmark/pinmark/core/images"
	"codeberg.org/pinmark/pinmark/core/paginator"
	"codeberg.org/pinmark/pinmark/core/ranking"
	"codeberg.org/pinmark/pinmark/core/store"
	"codeberg.org/pinmark/pinmark/i18n"
	"codeberg.org/pinmark/pinmark/server/template"
)

const (
	labelTitle       i18n.MsgKey = "Title"
	labelURL         i18n.MsgKey = "URL"
	labelDescription i18n.MsgKey = "Description"
	labelPageURL     i18n.MsgKey = "Page URL"
)

// CreateData is the bookmark form page.
type CreateData struct {
	Form *images.CreateForm
}

// Create renders the bookmark form, previewing the image when its URL is known.
func Create(data CreateData) templ.Component {
	const title i18n.MsgKey = "Bookmark an image"

	return Layout(title, fragments.Func(func(p *fragments.Printer) {
		form := data.Form

		p.Raw(`<h1>`)
		p.Component(title)
		p.Raw(`</h1>`)

		if form.URL != "" && !form.Errors.Has("url") {
			p.Raw(`<img src="`)
			p.URL(form.URL)
			p.Raw(`" class="image-preview" alt="">`)
		}

		p.Raw(`<form method="post" action="/images/create">`)
		p.Component(fragments.NonFieldErrors(form.Errors))
		p.Component(fragments.Field(fragments.Input{
			Label: labelTitle, Name: "title", Type: "text", Value: form.Title, Errors: form.Errors.Get("title"),
		}))
		p.Component(fragments.Field(fragments.Input{
			Label: labelURL, Name: "url", Type: "url", Value: form.URL, Errors: form.Errors.Get("url"),
		}))
		p.Component(fragments.Field(fragments.Input{
			Label: labelDescription, Name: "description", Type: "textarea", Value: form.Description,
			Errors: form.Errors.Get("description"),
		}))
		p.Component(fragments.CSRFInput())
		p.Raw(`<p><input type="submit" value="`)
		p.Tr("Bookmark it")
		p.Raw(`"></p></form>`)
	}))
}

// DiscoverData is the image finder page.
type DiscoverData struct {
	PageURL string
	Errors  forms.Errors
	// Result is nil until a page was scanned.
	Result *discover.Result
}

// Discover renders the page URL form and the candidates found on it.
func Discover(data DiscoverData) templ.Component {
	const title i18n.MsgKey = "Find images"

	return Layout(title, fragments.Func(func(p *fragments.Printer) {
		p.Raw(`<h1>`)
		p.Component(title)
		p.Raw(`</h1><form method="get" action="/images/discover">`)
		p.Component(fragments.NonFieldErrors(data.Errors))
		p.Component(fragments.Field(fragments.Input{
			Label: labelPageURL, Name: "url", Type: "url", Value: data.PageURL, Errors: data.Errors.Get("url"),
		}))
		p.Raw(`<p><input type="submit" value="`)
		p.Tr("Find images")
		p.Raw(`"></p></form>`)

		if data.Result == nil {
			return
		}

		p.Raw(`<h2>`)
		p.Tr("Images on {{.Title}}", "Title", resultTitle(data.Result))
		p.Raw(`</h2>`)

		if len(data.Result.Images) == 0 {
			p.Raw(`<p>`)
			p.Tr("No images found.")
			p.Raw(`</p>`)

			return
		}

		p.Raw(`<div class="discovered">`)

		for _, candidate := range data.Result.Images {
			prefill := url.Values{"url": {candidate.URL}, "title": {candidate.Alt}}
			if candidate.Alt == "" {
				prefill.Set("title", data.Result.Title)
			}

			p.Raw(`<div class="image"><a href="/images/create?`)
			p.Text(prefill.Encode())
			p.Raw(`"><img src="`)
			p.URL(candidate.URL)
			p.Raw(`" alt="`)
			p.Text(candidate.Alt)
			p.Raw(`" loading="lazy"></a></div>`)
		}

		p.Raw(`</div>`)
	}))
}

func resultTitle(res *discover.Result) string {
	if res.Title != "" {
		return res.Title
	}

	return res.PageURL
}

// DetailData is the page of one bookmarked image.
type DetailData struct {
	Image   store.Image
	Views   int64
	LikedBy []string
	Liked   bool
}

// Detail renders an image with its likes and view count.
func Detail(data DetailData) templ.Component {
	img := data.Image

	return Layout(Text(img.Title), fragments.Func(func(p *fragments.Printer) {
		p.Raw(`<h1>`)
		p.Text(img.Title)
		p.Raw(`</h1><a href="`)
		p.URL(fragments.ImageSrc(img))
		p.Raw(`"><img src="`)
		p.URL(fragments.ImageSrc(img))
		p.Raw(`" class="image-detail" alt="`)
		p.Text(img.Title)
		p.Raw(`"></a><p class="byline">`)
		p.Tr("Bookmarked by {{.Username}}", "Username", img.Username)
		p.Raw(` `)
		p.Component(template.Ago(img.Created))
		p.Raw(`</p>`)

		if img.Description != "" {
			p.Raw(`<p class="description">`)
			p.Text(img.Description)
			p.Raw(`</p>`)
		}

		p.Raw(`<div class="image-info">`)
		p.Component(partials.Likes(partials.LikesData{ImageID: img.ID, Total: img.TotalLikes, Liked: data.Liked}))
		p.Raw(`<span class="views">`)
		p.TrN("{{.Count}} view", "{{.Count}} views", int(data.Views), "Count", data.Views)
		p.Raw(`</span></div><div class="image-likes">`)

		if len(data.LikedBy) == 0 {
			p.Raw(`<p>`)
			p.Tr("Nobody likes this image yet.")
			p.Raw(`</p>`)
		}

		for _, username := range data.LikedBy {
			p.Raw(`<span class="liker">`)
			p.Text(username)
			p.Raw(`</span>`)
		}

		p.Raw(`</div>`)
	}))
}

// ListData is the paginated image list.
type ListData struct {
	Page paginator.Page[store.Image]
}

// List renders the first requested page; pinmark.js loads the following
// pages through the images_only fragment while scrolling.
func List(data ListData) templ.Component {
	const title i18n.MsgKey = "Images bookmarked"

	return Layout(title, fragments.Func(func(p *fragments.Printer) {
		page := data.Page

		p.Raw(`<h1>`)
		p.Component(title)
		p.Raw(`</h1><div id="image-list" data-next-page="`)

		if page.HasNext() {
			p.Raw(strconv.Itoa(page.NextNumber()))
		}

		p.Raw(`">`)
		p.Component(partials.ImageList(page.Items))
		p.Raw(`</div>`)

		if page.HasOtherPages() {
			p.Raw(`<nav class="pagination">`)

			if page.HasPrevious() {
				p.Raw(`<a href="?page=`, strconv.Itoa(page.PreviousNumber()), `" rel="prev">`)
				p.Tr("Previous")
				p.Raw(`</a> `)
			}

			p.Raw(`<span class="current">`)
			p.Tr("Page {{.Number}} of {{.NumPages}}", "Number", page.Number, "NumPages", page.NumPages)
			p.Raw(`</span>`)

			if page.HasNext() {
				p.Raw(` <a href="?page=`, strconv.Itoa(page.NextNumber()), `" rel="next">`)
				p.Tr("Next")
				p.Raw(`</a>`)
			}

			p.Raw(`</nav>`)
		}
	}))
}

// RankingData is the most viewed images page.
type RankingData struct {
	Entries []ranking.Entry
}

// Ranking renders the most viewed images in order.
func Ranking(data RankingData) templ.Component {
	const title i18n.MsgKey = "Most viewed images"

	return Layout(title, fragments.Func(func(p *fragments.Printer) {
		p.Raw(`<h1>`)
		p.Component(title)
		p.Raw(`</h1>`)

		if len(data.Entries) == 0 {
			p.Raw(`<p>`)
			p.Tr("Nothing here yet.")
			p.Raw(`</p>`)

			return
		}

		p.Raw(`<ol class="ranking">`)

		for _, entry := range data.Entries {
			p.Raw(`<li><a href="`)
			p.URL(entry.Image.AbsoluteURL())
			p.Raw(`">`)
			p.Text(entry.Image.Title)
			p.Raw(`</a> <span class="views">`)
			p.TrN("{{.Count}} view", "{{.Count}} views", int(entry.Views), "Count", entry.Views)
			p.Raw(`</span></li>`)
		}

		p.Raw(`</ol>`)
	}))
}
