// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"time"

	"codeberg.org/pinmark/pinmark/config"
	"codeberg.org/pinmark/pinmark/core/actions"
	"codeberg.org/pinmark/pinmark/core/images"
	"codeberg.org/pinmark/pinmark/core/ranking"
	"codeberg.org/pinmark/pinmark/core/store"
)

// App holds the dependencies of the HTML handlers.
type App struct {
	Store   *store.Store
	Ranking *ranking.Ranking
	Actions *actions.Recorder
	Images  *images.Service
}

// NewApp wires the domain services on top of st and rk.
func NewApp(st *store.Store, rk *ranking.Ranking) *App {
	recorder := actions.New(st)

	return &App{
		Store:   st,
		Ranking: rk,
		Actions: recorder,
		Images: &images.Service{
			Store:        st,
			Actions:      recorder,
			MediaRoot:    config.Global.Media.Root,
			MaxImageSize: int64(config.Global.Media.MaxImageSize),
			Now:          time.Now,
		},
	}
}
