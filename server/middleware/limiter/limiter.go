// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"math"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"codeberg.org/pinmark/pinmark/i18n"
)

// CleanupInterval is the minimum time between two sweeps of idle limiters.
const CleanupInterval = 5 * time.Minute

// MsgTooManyAttempts is the body of a 429 response.
const MsgTooManyAttempts i18n.MsgKey = "Too many attempts, try again later."

var timeNow = time.Now // Wrapper for time.Now, which allows us to mock it in tests.

// limiterWrapper holds a rate limiter and additional metadata.
type limiterWrapper struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

// Limiter throttles POST requests to a fixed set of paths.
type Limiter struct {
	attempts int
	window   time.Duration
	paths    []string

	limiters      sync.Map // network string -> *limiterWrapper
	cleanupMu     sync.Mutex
	lastCleanupAt time.Time
}

// New returns a Limiter allowing attempts POST requests per window to each of paths.
func New(attempts int, window time.Duration, paths ...string) *Limiter {
	return &Limiter{
		attempts: attempts,
		window:   window,
		paths:    paths,
	}
}

// Evaluate is the middleware entry point.
func (l *Limiter) Evaluate(w http.ResponseWriter, r *http.Request, next http.Handler) {
	if r.Method != http.MethodPost || !slices.Contains(l.paths, r.URL.Path) {
		next.ServeHTTP(w, r)

		return
	}

	l.doCleanup()

	network := clientNetwork(r)

	wrapper := l.getOrCreateLimiter(network)
	if retryAfter, ok := wrapper.take(); !ok {
		log.Warn().
			Str("network", network).
			Str("path", r.URL.Path).
			Msg("Rate limit exceeded")

		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
		http.Error(w, MsgTooManyAttempts.Tr(r.Context()), http.StatusTooManyRequests)

		return
	}

	next.ServeHTTP(w, r)
}

// Len reports the number of tracked networks.
func (l *Limiter) Len() int {
	n := 0

	l.limiters.Range(func(_, _ any) bool {
		n++

		return true
	})

	return n
}

func (l *Limiter) getOrCreateLimiter(network string) *limiterWrapper {
	if existing, ok := l.limiters.Load(network); ok {
		return existing.(*limiterWrapper)
	}

	every := l.window / time.Duration(l.attempts)
	fresh := &limiterWrapper{
		limiter:    rate.NewLimiter(rate.Every(every), l.attempts),
		lastAccess: timeNow(),
	}

	actual, _ := l.limiters.LoadOrStore(network, fresh)

	return actual.(*limiterWrapper)
}

// take consumes one token, returning the wait until the next one otherwise.
func (lw *limiterWrapper) take() (time.Duration, bool) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	now := timeNow()
	lw.lastAccess = now

	reservation := lw.limiter.ReserveN(now, 1)
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)

		return delay, false
	}

	return 0, true
}

// doCleanup drops limiters idle for a full window. Their buckets would be
// full again, so forgetting them changes nothing for the client.
func (l *Limiter) doCleanup() {
	now := timeNow()

	l.cleanupMu.Lock()
	if l.lastCleanupAt.IsZero() {
		l.lastCleanupAt = now
	}

	due := now.Sub(l.lastCleanupAt) >= CleanupInterval
	if due {
		l.lastCleanupAt = now
	}
	l.cleanupMu.Unlock()

	if due {
		l.cleanupExpiredLimiters(now)
	}
}

func (l *Limiter) cleanupExpiredLimiters(now time.Time) {
	removed := 0

	l.limiters.Range(func(key, value any) bool {
		lw := value.(*limiterWrapper)

		lw.mu.Lock()
		idle := now.Sub(lw.lastAccess)
		lw.mu.Unlock()

		if idle >= l.window {
			l.limiters.Delete(key)

			removed++
		}

		return true
	})

	log.Debug().
		Int("removed", removed).
		Dur("dur", timeNow().Sub(now)).
		Msg("limiter cleanup")
}
