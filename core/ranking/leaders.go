// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package ranking

import (
	"context"

	"golang.org/x/sync/errgroup"

	"codeberg.org/pinmark/pinmark/core/store"
)

// ImageLoader resolves image ids, keeping their order.
type ImageLoader interface {
	ImagesByIDs(ctx context.Context, ids []int64) ([]store.Image, error)
}

// Entry is one row of the ranking.
type Entry struct {
	Image store.Image
	Views int64
}

// Leaders loads the top n images with their view counts. Ids in the ranking
// whose image no longer exists are skipped.
func (rk *Ranking) Leaders(ctx context.Context, images ImageLoader, n int) ([]Entry, error) {
	ids, err := rk.Top(ctx, n)
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return nil, nil
	}

	var (
		imgs   []store.Image
		counts []int64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		imgs, err = images.ImagesByIDs(gctx, ids)

		return err
	})

	g.Go(func() error {
		var err error

		counts, err = rk.ViewsMany(gctx, ids)

		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	viewsByID := make(map[int64]int64, len(ids))
	for i, id := range ids {
		viewsByID[id] = counts[i]
	}

	entries := make([]Entry, 0, len(imgs))
	for _, img := range imgs {
		entries = append(entries, Entry{Image: img, Views: viewsByID[img.ID]})
	}

	return entries, nil
}
