// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package fragments

import (
	"github.com/a-h/templ"

	"codeberg.org/pinmark/pinmark/config"
	"codeberg.org/pinmark/pinmark/core/store"
)

// ImageSrc prefers the stored copy over the original URL.
func ImageSrc(img store.Image) string {
	if img.File != "" {
		return config.Global.MediaURL(img.File)
	}

	return img.URL
}

// ImageThumb links the picture to its detail page.
func ImageThumb(img store.Image) templ.Component {
	return Func(func(p *Printer) {
		p.Raw(`<a href="`)
		p.URL(img.AbsoluteURL())
		p.Raw(`"><img src="`)
		p.URL(ImageSrc(img))
		p.Raw(`" alt="`)
		p.Text(img.Title)
		p.Raw(`" loading="lazy"></a>`)
	})
}
