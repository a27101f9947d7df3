// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"codeberg.org/pinmark/pinmark/core/authenticated"
	"codeberg.org/pinmark/pinmark/server/utils"
)

// validation errors.
var (
	errSecretInvalid        = errors.New("basic.secret is not a valid paseto key")
	errDatabasePathRequired = errors.New("database.path is required")
	errRedisAddrRequired    = errors.New("redis.addr is required")
	errMediaRootRequired    = errors.New("media.root is required")
	errInvalidMediaPrefix   = errors.New("media.urlPrefix must start and end with /")
	errInvalidMaxImageSize  = errors.New("media.maxImageSize must be positive")
	errInvalidPerPage       = errors.New("images.perPage must be positive")
	errInvalidRankingSize   = errors.New("images.rankingSize must be positive")
	errInvalidFeedSize      = errors.New("images.feedSize must be positive")
	errInvalidCacheSize     = errors.New("cache.cacheSize must be positive when the cache is enabled")
	errInvalidSessionMaxAge = errors.New("session.maxAge must be positive")
	errInvalidLimiterConfig = errors.New("limiter.attempts and limiter.window must be positive")
	errInvalidRepoURL       = errors.New("instance.repoUrl must be an absolute URL")
)

// validateAndSet validates the server configuration and populates derived fields.
func (cfg *ServerConfig) validateAndSet() error {
	if cfg.Basic.Host == "" {
		cfg.Basic.Host = "localhost"
		log.Info().
			Str("host", cfg.Basic.Host).
			Msg("Binding to default host")
	}

	if cfg.Basic.Port == "" {
		cfg.Basic.Port = "8000"
		log.Info().
			Str("port", cfg.Basic.Port).
			Msg("Using default port")
	}

	if cfg.Basic.Secret == "" {
		key := authenticated.NewSecretKeyHex()
		log.Warn().Msgf(`No secret configured, sessions will not survive a restart. Generated key (put this in config.yaml)
basic:
  secret: "%s"`, key)

		cfg.Basic.Secret = key
	}

	if err := SessionSigner.LoadSecretKeyFromHex(cfg.Basic.Secret); err != nil {
		return fmt.Errorf("%w: %w", errSecretInvalid, err)
	}

	// remove key. no longer needed.
	cfg.Basic.Secret = ""

	if cfg.Database.Path == "" {
		return errDatabasePathRequired
	}

	if cfg.Redis.Addr == "" {
		return errRedisAddrRequired
	}

	if cfg.Media.Root == "" {
		return errMediaRootRequired
	}

	if !strings.HasPrefix(cfg.Media.URLPrefix, "/") || !strings.HasSuffix(cfg.Media.URLPrefix, "/") {
		return errInvalidMediaPrefix
	}

	if cfg.Media.MaxImageSize <= 0 {
		return errInvalidMaxImageSize
	}

	if cfg.Images.PerPage <= 0 {
		return errInvalidPerPage
	}

	if cfg.Images.RankingSize <= 0 {
		return errInvalidRankingSize
	}

	if cfg.Images.FeedSize <= 0 {
		return errInvalidFeedSize
	}

	if cfg.Cache.Enabled && cfg.Cache.Size <= 0 {
		return errInvalidCacheSize
	}

	if cfg.Session.MaxAge <= 0 {
		return errInvalidSessionMaxAge
	}

	if cfg.Limiter.Enabled && (cfg.Limiter.Attempts <= 0 || cfg.Limiter.Window <= 0) {
		return errInvalidLimiterConfig
	}

	repoURL, err := utils.ParseURL(cfg.Instance.RepoURL, "Repo")
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidRepoURL, err)
	}

	cfg.Instance.RepoURL = repoURL.String()

	return nil
}
