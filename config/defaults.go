// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import "time"

const (
	defaultCacheTTLMinutes   = 10
	defaultFetchTimeoutSecs  = 10
	defaultSessionMaxAgeDays = 14
	defaultLimiterWindowMins = 1

	// 10 MiB
	defaultMaxImageSize = 10 << 20
)

// SetDefaults populates the configuration with default values.
func (cfg *ServerConfig) SetDefaults() {
	cfg.Basic.Host = "localhost"
	cfg.Basic.Port = "8000"

	cfg.Database.Path = "./data/pinmark.db"

	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.DB = 0

	cfg.Media.Root = "./data/media"
	cfg.Media.URLPrefix = "/media/"
	cfg.Media.MaxImageSize = defaultMaxImageSize

	cfg.Images.PerPage = 8
	cfg.Images.RankingSize = 10
	cfg.Images.FeedSize = 10

	cfg.Fetch.Timeout = defaultFetchTimeoutSecs * time.Second
	cfg.Fetch.UserAgent = "Pinmark/" + BuildVersion + " (+bookmarklet)"

	cfg.Cache.Enabled = true
	cfg.Cache.Size = 64
	cfg.Cache.TTL = defaultCacheTTLMinutes * time.Minute

	cfg.Session.MaxAge = defaultSessionMaxAgeDays * 24 * time.Hour

	cfg.Instance.RepoURL = "https://codeberg.org/pinmark/pinmark"

	cfg.Log.Level = "info"
	cfg.Log.Outputs = []string{"/dev/stderr"}
	cfg.Log.Format = "console"

	cfg.Limiter.Enabled = true
	cfg.Limiter.Attempts = 10
	cfg.Limiter.Window = defaultLimiterWindowMins * time.Minute
}
