// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"bytes"
	"encoding/gob"
	"hash/fnv"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"codeberg.org/pinmark/pinmark/config"
	"codeberg.org/pinmark/pinmark/core/requests/lrucache"
)

var cache *lrucache.Cache

// cachedItem is the gob-encoded form of a cached Response.
type cachedItem struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestURL string
	FinalURL   string
}

// Setup initializes the page cache from config.Global.Cache.
//
// With caching disabled every call to GetPage goes to the network.
func Setup() error {
	if !config.Global.Cache.Enabled {
		cache = nil

		log.Info().
			Msg("Cache is disabled, skipping cache initialization")

		return nil
	}

	c, err := lrucache.New(config.Global.Cache.Size, config.Global.Cache.TTL)
	if err != nil {
		return err
	}

	cache = c

	log.Info().
		Int("size", config.Global.Cache.Size).
		Dur("ttl", config.Global.Cache.TTL).
		Msg("Initialized page cache")

	return nil
}

func cacheKey(rawURL string) string {
	hasher := fnv.New64a()

	_, _ = hasher.Write([]byte(rawURL))

	return strconv.FormatUint(hasher.Sum64(), 16)
}

func cachedResponse(rawURL string) (*Response, bool) {
	if cache == nil {
		return nil, false
	}

	key := cacheKey(rawURL)

	payload, ok := cache.Get(key)
	if !ok {
		return nil, false
	}

	var item cachedItem
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&item); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to decode cached item; removing")
		cache.Remove(key)

		return nil, false
	}

	// fnv collisions are possible; the stored URL settles it
	if item.RequestURL != rawURL {
		return nil, false
	}

	return &Response{
		StatusCode: item.StatusCode,
		Header:     item.Header,
		Body:       item.Body,
		URL:        item.FinalURL,
	}, true
}

func storeResponse(rawURL string, resp *Response) {
	if cache == nil {
		return
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(cachedItem{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
		RequestURL: rawURL,
		FinalURL:   resp.URL,
	}); err != nil {
		log.Warn().Err(err).Msg("Failed to serialize item for cache")

		return
	}

	cache.Add(cacheKey(rawURL), buf.Bytes())
}

// Invalidate drops rawURL from the cache.
func Invalidate(rawURL string) bool {
	if cache == nil {
		return false
	}

	return cache.Remove(cacheKey(rawURL))
}
