// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package store

import (
	"context"
	"database/sql"
)

// HasLiked reports whether userID likes imageID.
func (s *Store) HasLiked(ctx context.Context, imageID, userID int64) (bool, error) {
	var n int

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM image_likes WHERE image_id = ? AND user_id = ?`, imageID, userID).Scan(&n)

	return n > 0, err
}

// AddLike records that userID likes imageID and returns the new like total.
//
// Adding an existing like is a no-op.
func (s *Store) AddLike(ctx context.Context, imageID, userID int64) (int, error) {
	return s.changeLike(ctx, imageID,
		`INSERT OR IGNORE INTO image_likes (image_id, user_id) VALUES (?, ?)`, imageID, userID)
}

// RemoveLike deletes the like of userID on imageID and returns the new like total.
func (s *Store) RemoveLike(ctx context.Context, imageID, userID int64) (int, error) {
	return s.changeLike(ctx, imageID,
		`DELETE FROM image_likes WHERE image_id = ? AND user_id = ?`, imageID, userID)
}

// changeLike applies stmt and refreshes images.total_likes in one transaction.
func (s *Store) changeLike(ctx context.Context, imageID int64, stmt string, args ...any) (int, error) {
	var total int

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM images WHERE id = ?`, imageID).Scan(&exists); err != nil {
			return err
		}

		if exists == 0 {
			return ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return err
		}

		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM image_likes WHERE image_id = ?`, imageID).Scan(&total); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `UPDATE images SET total_likes = ? WHERE id = ?`, total, imageID)

		return err
	})

	return total, err
}

// CountLikes returns how many users like imageID.
func (s *Store) CountLikes(ctx context.Context, imageID int64) (int, error) {
	var n int

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM image_likes WHERE image_id = ?`, imageID).Scan(&n)

	return n, err
}

// LikedBy returns the usernames of users who like imageID, in username order.
func (s *Store) LikedBy(ctx context.Context, imageID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.username FROM image_likes l JOIN users u ON u.id = l.user_id
		 WHERE l.image_id = ? ORDER BY u.username`, imageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}

		names = append(names, name)
	}

	return names, rows.Err()
}
