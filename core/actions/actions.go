// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package actions records the activity stream shown on the dashboard.
*/
package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"codeberg.org/pinmark/pinmark/core/store"
)

// Verbs recorded by the application.
const (
	VerbBookmarked = "bookmarked image"
	VerbLikes      = "likes"
	VerbRegistered = "has created an account"
)

// DedupeWindow suppresses repeats of the same action by the same user.
const DedupeWindow = 60 * time.Second

// Store is the subset of the store used by this package.
type Store interface {
	CreateAction(ctx context.Context, userID int64, verb string, imageID int64) (store.Action, error)
	SimilarActionSince(ctx context.Context, userID int64, verb string, imageID int64, since time.Time) (bool, error)
	RecentActions(ctx context.Context, excludeUserID int64, limit int) ([]store.Action, error)
}

// Recorder stores actions with deduplication.
type Recorder struct {
	Store Store
	Now   func() time.Time
}

// New returns a Recorder using the wall clock.
func New(s Store) *Recorder {
	return &Recorder{Store: s, Now: time.Now}
}

// Create records verb by userID on imageID (0 for no target).
//
// It returns false without storing anything when the same action was
// recorded within DedupeWindow.
func (rec *Recorder) Create(ctx context.Context, userID int64, verb string, imageID int64) (bool, error) {
	since := rec.Now().Add(-DedupeWindow)

	seen, err := rec.Store.SimilarActionSince(ctx, userID, verb, imageID, since)
	if err != nil {
		return false, fmt.Errorf("failed to check recent actions: %w", err)
	}

	if seen {
		log.Debug().
			Int64("user_id", userID).
			Str("verb", verb).
			Int64("image_id", imageID).
			Msg("Skipped duplicate action")

		return false, nil
	}

	if _, err := rec.Store.CreateAction(ctx, userID, verb, imageID); err != nil {
		return false, err
	}

	return true, nil
}

// Feed returns the latest actions of users other than userID.
func (rec *Recorder) Feed(ctx context.Context, userID int64, limit int) ([]store.Action, error) {
	return rec.Store.RecentActions(ctx, userID, limit)
}
