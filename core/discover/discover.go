// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package discover finds bookmarkable images on a web page.

It is the server-side counterpart of the bookmarklet: given a page URL it
collects the <img> sources and the og:image preview whose extension is
accepted by the image form.
*/
package discover

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"codeberg.org/pinmark/pinmark/core/requests"
)

// AllowedExtensions are the image extensions accepted for bookmarking.
var AllowedExtensions = []string{"jpg", "jpeg", "png"}

// MaxCandidates bounds the number of images returned for one page.
const MaxCandidates = 100

// Result lists the images found on a page.
type Result struct {
	PageURL string
	Title   string
	Images  []Candidate
}

// Candidate is one image found on the page.
type Candidate struct {
	URL string
	Alt string
}

// Extension returns the lower-cased text after the last dot of rawURL.
// The whole string counts, so "get.php?file=a.jpg" has extension "jpg".
func Extension(rawURL string) string {
	i := strings.LastIndexByte(rawURL, '.')
	if i < 0 {
		return ""
	}

	return strings.ToLower(rawURL[i+1:])
}

// HasAllowedExtension reports whether rawURL ends in an allowed image
// extension, ignoring case.
func HasAllowedExtension(rawURL string) bool {
	return slices.Contains(AllowedExtensions, Extension(rawURL))
}

// Images fetches pageURL and extracts its images.
func Images(ctx context.Context, pageURL string) (*Result, error) {
	resp, err := requests.GetPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	base := resp.URL
	if base == "" {
		base = pageURL
	}

	return Parse(bytes.NewReader(resp.Body), base)
}

// Parse extracts images from an HTML document located at pageURL.
func Parse(r io.Reader, pageURL string) (*Result, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	// <base href> changes how relative sources resolve
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if u, err := base.Parse(strings.TrimSpace(href)); err == nil {
			base = u
		}
	}

	result := &Result{
		PageURL: pageURL,
		Title:   pageTitle(doc),
	}

	seen := make(map[string]bool)

	add := func(raw, alt string) {
		if len(result.Images) >= MaxCandidates {
			return
		}

		abs, ok := resolve(base, raw)
		if !ok || seen[abs] || !HasAllowedExtension(abs) {
			return
		}

		seen[abs] = true
		result.Images = append(result.Images, Candidate{URL: abs, Alt: strings.TrimSpace(alt)})
	}

	doc.Find(`meta[property="og:image"], meta[name="og:image"]`).Each(func(_ int, s *goquery.Selection) {
		content, _ := s.Attr("content")
		add(content, result.Title)
	})

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		alt, _ := s.Attr("alt")

		for _, attr := range []string{"src", "data-src"} {
			if src, ok := s.Attr(attr); ok {
				add(src, alt)
			}
		}
	})

	return result, nil
}

func pageTitle(doc *goquery.Document) string {
	if title, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}

	return strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
}

func resolve(base *url.URL, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "data:") {
		return "", false
	}

	u, err := base.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}

	u.Fragment = ""

	return u.String(), true
}
