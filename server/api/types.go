// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package api

import (
	"time"

	"codeberg.org/pinmark/pinmark/config"
	"codeberg.org/pinmark/pinmark/core/store"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error codes.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidID       = "INVALID_ID"
	CodeInternal        = "INTERNAL"
)

// ImageResponse describes a bookmarked image.
type ImageResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	User        string    `json:"user"`
	URL         string    `json:"url"`
	MediaURL    string    `json:"media_url,omitempty"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
	TotalLikes  int       `json:"total_likes"`
	DetailURL   string    `json:"detail_url"`
}

func newImageResponse(img store.Image) ImageResponse {
	return ImageResponse{
		ID:          img.ID,
		Title:       img.Title,
		Slug:        img.Slug,
		User:        img.Username,
		URL:         img.URL,
		MediaURL:    config.Global.MediaURL(img.File),
		Description: img.Description,
		Created:     img.Created.UTC(),
		TotalLikes:  img.TotalLikes,
		DetailURL:   img.AbsoluteURL(),
	}
}

func newImageResponses(imgs []store.Image) []ImageResponse {
	out := make([]ImageResponse, 0, len(imgs))
	for _, img := range imgs {
		out = append(out, newImageResponse(img))
	}

	return out
}

// ImageDetailResponse is an image with its counters.
type ImageDetailResponse struct {
	ImageResponse

	Views   int64    `json:"views"`
	LikedBy []string `json:"liked_by"`
}

// ImagePageResponse is one page of the image list.
type ImagePageResponse struct {
	Page        int             `json:"page"`
	NumPages    int             `json:"num_pages"`
	HasNext     bool            `json:"has_next"`
	HasPrevious bool            `json:"has_previous"`
	Images      []ImageResponse `json:"images"`
}

// RankedImageResponse is one row of the ranking.
type RankedImageResponse struct {
	Rank  int           `json:"rank"`
	Views int64         `json:"views"`
	Image ImageResponse `json:"image"`
}

// RankingResponse lists the most viewed images, most viewed first.
type RankingResponse struct {
	Images []RankedImageResponse `json:"images"`
}
