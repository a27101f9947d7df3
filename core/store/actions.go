// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Action is an entry in the activity stream.
//
// TargetImageID is zero for actions without a target.
type Action struct {
	ID            int64
	UserID        int64
	Username      string
	Verb          string
	TargetImageID int64
	TargetTitle   string
	TargetSlug    string
	Created       time.Time
}

func nullableID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

// CreateAction stores a new action and returns it with ID and Created populated.
func (s *Store) CreateAction(ctx context.Context, userID int64, verb string, imageID int64) (Action, error) {
	created := s.now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO actions (user_id, verb, target_image_id, created) VALUES (?, ?, ?, ?)`,
		userID, verb, nullableID(imageID), toMicros(created))
	if err != nil {
		return Action{}, fmt.Errorf("failed to create action %q: %w", verb, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Action{}, err
	}

	return Action{ID: id, UserID: userID, Verb: verb, TargetImageID: imageID, Created: created}, nil
}

// SimilarActionSince reports whether userID recorded verb on imageID at or after since.
//
// An imageID of zero matches actions without a target.
func (s *Store) SimilarActionSince(ctx context.Context, userID int64, verb string, imageID int64, since time.Time) (bool, error) {
	var n int

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM actions
		 WHERE user_id = ? AND verb = ? AND created >= ?
		   AND ((? = 0 AND target_image_id IS NULL) OR target_image_id = ?)`,
		userID, verb, toMicros(since), imageID, imageID).Scan(&n)
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// RecentActions returns the newest actions of everybody except excludeUserID.
func (s *Store) RecentActions(ctx context.Context, excludeUserID int64, limit int) ([]Action, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.user_id, u.username, a.verb,
		        COALESCE(a.target_image_id, 0), COALESCE(i.title, ''), COALESCE(i.slug, ''), a.created
		 FROM actions a
		 JOIN users u ON u.id = a.user_id
		 LEFT JOIN images i ON i.id = a.target_image_id
		 WHERE a.user_id != ?
		 ORDER BY a.created DESC, a.id DESC
		 LIMIT ?`,
		excludeUserID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []Action

	for rows.Next() {
		var (
			a       Action
			created int64
		)

		if err := rows.Scan(&a.ID, &a.UserID, &a.Username, &a.Verb,
			&a.TargetImageID, &a.TargetTitle, &a.TargetSlug, &created); err != nil {
			return nil, err
		}

		a.Created = fromMicros(created)
		actions = append(actions, a)
	}

	return actions, rows.Err()
}
