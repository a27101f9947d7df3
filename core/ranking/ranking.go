// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package ranking counts image views in Redis.

Each image has a counter at "image:<id>:views" and a score in the sorted
set "image_ranking"; both are bumped together on every detail page view.
*/
package ranking

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"codeberg.org/pinmark/pinmark/core/audit"
)

// RankingKey is the sorted set of image ids scored by views.
const RankingKey = "image_ranking"

func viewsKey(imageID int64) string {
	return "image:" + strconv.FormatInt(imageID, 10) + ":views"
}

// Ranking wraps a Redis client.
type Ranking struct {
	rdb redis.UniversalClient
}

// Options configure the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// New connects to Redis. The connection is established lazily.
func New(opts Options) *Ranking {
	return &Ranking{
		rdb: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
	}
}

// NewWithClient wraps an existing client.
func NewWithClient(rdb redis.UniversalClient) *Ranking {
	return &Ranking{rdb: rdb}
}

// Close releases the connection pool.
func (rk *Ranking) Close() error {
	return rk.rdb.Close()
}

// Ping checks that Redis is reachable.
func (rk *Ranking) Ping(ctx context.Context) error {
	return rk.rdb.Ping(ctx).Err()
}

// RecordView increments the view counter and ranking score of imageID and
// returns the new total.
func (rk *Ranking) RecordView(ctx context.Context, imageID int64) (int64, error) {
	span := trace(ctx, "INCR "+viewsKey(imageID))

	var incr *redis.IntCmd

	_, err := rk.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, viewsKey(imageID))
		pipe.ZIncrBy(ctx, RankingKey, 1, strconv.FormatInt(imageID, 10))

		return nil
	})
	finish(span, err)

	if err != nil {
		return 0, fmt.Errorf("failed to record view of image %d: %w", imageID, err)
	}

	return incr.Val(), nil
}

// Views returns the total views of imageID; unseen images have zero.
func (rk *Ranking) Views(ctx context.Context, imageID int64) (int64, error) {
	n, err := rk.rdb.Get(ctx, viewsKey(imageID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	return n, err
}

// ViewsMany returns the views of each id, in order.
func (rk *Ranking) ViewsMany(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = viewsKey(id)
	}

	vals, err := rk.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]int64, len(ids))

	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}

		out[i], _ = strconv.ParseInt(s, 10, 64)
	}

	return out, nil
}

// Top returns up to n image ids with the most views, most viewed first.
func (rk *Ranking) Top(ctx context.Context, n int) ([]int64, error) {
	if n <= 0 {
		return nil, nil
	}

	span := trace(ctx, "ZREVRANGE "+RankingKey)

	members, err := rk.rdb.ZRevRange(ctx, RankingKey, 0, int64(n-1)).Result()
	finish(span, err)

	if err != nil {
		return nil, fmt.Errorf("failed to read ranking: %w", err)
	}

	ids := make([]int64, 0, len(members))

	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			log.Warn().
				Str("member", m).
				Msg("Skipping malformed ranking member")

			continue
		}

		ids = append(ids, id)
	}

	return ids, nil
}

// trace starts a Redis span; finish records the outcome and logs it.
func trace(ctx context.Context, command string) *audit.Span {
	span := &audit.Span{
		Destination: audit.ToRedis,
		Method:      "REDIS",
		URL:         command,
	}
	span.Begin(ctx)

	return span
}

func finish(span *audit.Span, err error) {
	span.Error = err
	span.End()
	span.Log()
}
