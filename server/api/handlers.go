// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package api serves the read-only JSON API under /api/v1 using gin.

Authentication shares the HTML session cookie; the list endpoint requires a
logged in, active user.
*/
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"codeberg.org/pinmark/pinmark/config"
	"codeberg.org/pinmark/pinmark/core/paginator"
	"codeberg.org/pinmark/pinmark/core/ranking"
	"codeberg.org/pinmark/pinmark/core/store"
)

// Handlers holds the dependencies of the API endpoints.
type Handlers struct {
	Store   *store.Store
	Ranking *ranking.Ranking
}

// NewHandlers creates the API handlers.
func NewHandlers(st *store.Store, rk *ranking.Ranking) *Handlers {
	return &Handlers{Store: st, Ranking: rk}
}

// HandleImages returns one page of images, newest first.
//
// A page that is not an integer yields the first page, one out of range
// the last page.
func (h *Handlers) HandleImages(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		abortUnauthenticated(c)

		return
	}

	pages := paginator.Paginator[store.Image]{
		Source: paginator.Funcs[store.Image]{
			CountFunc: h.Store.CountImages,
			SliceFunc: h.Store.ListImages,
		},
		PerPage: config.Global.Images.PerPage,
	}

	page, err := pages.Lenient(c.Request.Context(), c.Query("page"))
	if err != nil {
		abortInternal(c, err)

		return
	}

	c.JSON(http.StatusOK, ImagePageResponse{
		Page:        page.Number,
		NumPages:    page.NumPages,
		HasNext:     page.HasNext(),
		HasPrevious: page.HasPrevious(),
		Images:      newImageResponses(page.Items),
	})
}

// HandleImage returns a single image with its like and view counts.
// Reading it through the API does not count as a view.
func (h *Handlers) HandleImage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid image id", Code: CodeInvalidID})

		return
	}

	ctx := c.Request.Context()

	img, err := h.Store.ImageByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "image not found", Code: CodeNotFound})

		return
	} else if err != nil {
		abortInternal(c, err)

		return
	}

	resp := ImageDetailResponse{ImageResponse: newImageResponse(img)}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		resp.LikedBy, err = h.Store.LikedBy(gctx, id)

		return err
	})

	g.Go(func() error {
		views, err := h.Ranking.Views(gctx, id)
		if err != nil {
			// counters are best effort
			log.Warn().
				Err(err).
				Int64("image_id", id).
				Msg("Failed to read view count")

			return nil
		}

		resp.Views = views

		return nil
	})

	if err := g.Wait(); err != nil {
		abortInternal(c, err)

		return
	}

	if resp.LikedBy == nil {
		resp.LikedBy = []string{}
	}

	c.JSON(http.StatusOK, resp)
}

// HandleRanking returns the most viewed images.
func (h *Handlers) HandleRanking(c *gin.Context) {
	entries, err := h.Ranking.Leaders(c.Request.Context(), h.Store, config.Global.Images.RankingSize)
	if err != nil {
		abortInternal(c, err)

		return
	}

	resp := RankingResponse{Images: make([]RankedImageResponse, 0, len(entries))}

	for i, entry := range entries {
		resp.Images = append(resp.Images, RankedImageResponse{
			Rank:  i + 1,
			Views: entry.Views,
			Image: newImageResponse(entry.Image),
		})
	}

	c.JSON(http.StatusOK, resp)
}
