// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package lrucache is a fixed-capacity least-recently-used cache of byte
payloads with a per-entry expiry.

Payloads are zstd-compressed when that makes them smaller; fetched HTML
pages typically shrink by an order of magnitude.
*/
package lrucache

import (
	"container/list"
	"errors"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

var ErrInvalidSize = errors.New("must provide a positive size")

// Cache is safe for concurrent use. Construct it with New.
type Cache struct {
	size int
	ttl  time.Duration
	now  func() time.Time

	mu        sync.Mutex
	evictList *list.List
	items     map[string]*list.Element

	enc *zstd.Encoder
	dec *zstd.Decoder
}

type entry struct {
	key        string
	payload    []byte
	compressed bool
	expiresAt  time.Time
}

// New creates a cache holding at most size entries, each valid for ttl.
// A ttl of zero means entries never expire.
func New(size int, ttl time.Duration) (*Cache, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	// nil writer and reader: only EncodeAll/DecodeAll are used
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}

	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, err
	}

	return &Cache{
		size:      size,
		ttl:       ttl,
		now:       time.Now,
		evictList: list.New(),
		items:     make(map[string]*list.Element),
		enc:       enc,
		dec:       dec,
	}, nil
}

// Add stores a copy of payload under key, making it the most recently used.
// It reports whether an older entry was evicted to make room.
func (c *Cache) Add(key string, payload []byte) bool {
	// compress outside the lock; EncodeAll is safe for concurrent use
	stored, compressed := c.pack(payload)

	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = c.now().Add(c.ttl)
	}

	if el, ok := c.items[key]; ok {
		c.evictList.MoveToFront(el)

		ent := el.Value.(*entry)
		ent.payload, ent.compressed, ent.expiresAt = stored, compressed, expiresAt

		return false
	}

	c.items[key] = c.evictList.PushFront(&entry{
		key:        key,
		payload:    stored,
		compressed: compressed,
		expiresAt:  expiresAt,
	})

	if c.evictList.Len() <= c.size {
		return false
	}

	c.removeElement(c.evictList.Back())

	return true
}

// Get returns a copy of the payload stored under key.
// Expired entries are dropped and reported as missing.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()

	el, ok := c.items[key]
	if !ok {
		c.mu.Unlock()

		return nil, false
	}

	ent := el.Value.(*entry)
	if !ent.expiresAt.IsZero() && !c.now().Before(ent.expiresAt) {
		c.removeElement(el)
		c.mu.Unlock()

		return nil, false
	}

	c.evictList.MoveToFront(el)
	stored, compressed := ent.payload, ent.compressed
	c.mu.Unlock()

	return c.unpack(stored, compressed)
}

// Remove deletes key and reports whether it was present.
func (c *Cache) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if ok {
		c.removeElement(el)
	}

	return ok
}

// Keys returns the keys from the least to the most recently used.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.items))
	for el := c.evictList.Back(); el != nil; el = el.Prev() {
		keys = append(keys, el.Value.(*entry).key)
	}

	return keys
}

// Len returns the number of entries, including expired ones not yet dropped.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.evictList.Len()
}

// Purge removes every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictList.Init()
	clear(c.items)
}

// SetClock replaces the time source used for expiry.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = now
}

func (c *Cache) removeElement(el *list.Element) {
	c.evictList.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}

// pack returns the compressed payload when that is smaller, otherwise a copy.
func (c *Cache) pack(payload []byte) ([]byte, bool) {
	if len(payload) == 0 {
		return nil, false
	}

	if packed := c.enc.EncodeAll(payload, nil); len(packed) < len(payload) {
		return packed, true
	}

	return append([]byte(nil), payload...), false
}

func (c *Cache) unpack(stored []byte, compressed bool) ([]byte, bool) {
	if !compressed {
		return append([]byte(nil), stored...), true
	}

	decoded, err := c.dec.DecodeAll(stored, nil)
	if err != nil {
		return nil, false
	}

	return decoded, true
}
