// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"codeberg.org/pinmark/pinmark/core/slug"
)

// Image is a bookmarked picture.
type Image struct {
	ID          int64
	UserID      int64
	Username    string
	Title       string
	Slug        string
	URL         string
	File        string // path relative to the media root
	Description string
	Created     time.Time
	TotalLikes  int
}

// AbsoluteURL is the canonical detail page of the image.
func (img Image) AbsoluteURL() string {
	return "/images/detail/" + strconv.FormatInt(img.ID, 10) + "/" + img.Slug
}

const imageColumns = `i.id, i.user_id, u.username, i.title, i.slug, i.url, i.file, i.description, i.created, i.total_likes`

const imageFrom = ` FROM images i JOIN users u ON u.id = i.user_id`

func scanImage(row interface{ Scan(dest ...any) error }) (Image, error) {
	var (
		img     Image
		created int64
	)

	err := row.Scan(&img.ID, &img.UserID, &img.Username, &img.Title, &img.Slug, &img.URL,
		&img.File, &img.Description, &created, &img.TotalLikes)
	if errors.Is(err, sql.ErrNoRows) {
		return Image{}, ErrNotFound
	}

	if err != nil {
		return Image{}, err
	}

	img.Created = fromMicros(created)

	return img, nil
}

func scanImages(rows *sql.Rows) ([]Image, error) {
	defer rows.Close()

	var images []Image

	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}

		images = append(images, img)
	}

	return images, rows.Err()
}

// CreateImage inserts img. The slug is derived from the title when empty.
func (s *Store) CreateImage(ctx context.Context, img Image) (Image, error) {
	if img.Slug == "" {
		img.Slug = slug.Make(img.Title)
	}

	img.Created = s.now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO images (user_id, title, slug, url, file, description, created)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		img.UserID, img.Title, img.Slug, img.URL, img.File, img.Description, toMicros(img.Created))
	if err != nil {
		return Image{}, fmt.Errorf("failed to create image %q: %w", img.Title, err)
	}

	img.ID, err = res.LastInsertId()
	if err != nil {
		return Image{}, err
	}

	return s.ImageByID(ctx, img.ID)
}

// ImageByID fetches an image by primary key.
func (s *Store) ImageByID(ctx context.Context, id int64) (Image, error) {
	return scanImage(s.db.QueryRowContext(ctx, `SELECT `+imageColumns+imageFrom+` WHERE i.id = ?`, id))
}

// ImageByIDAndSlug fetches an image only if both id and slug match.
func (s *Store) ImageByIDAndSlug(ctx context.Context, id int64, slug string) (Image, error) {
	return scanImage(s.db.QueryRowContext(ctx,
		`SELECT `+imageColumns+imageFrom+` WHERE i.id = ? AND i.slug = ?`, id, slug))
}

// CountImages returns the number of bookmarked images.
func (s *Store) CountImages(ctx context.Context) (int, error) {
	var n int

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM images`).Scan(&n)

	return n, err
}

// ListImages returns images newest first.
func (s *Store) ListImages(ctx context.Context, offset, limit int) ([]Image, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+imageColumns+imageFrom+` ORDER BY i.created DESC, i.id DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, err
	}

	return scanImages(rows)
}

// ImagesByUser returns the images bookmarked by userID, newest first.
func (s *Store) ImagesByUser(ctx context.Context, userID int64, limit int) ([]Image, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+imageColumns+imageFrom+` WHERE i.user_id = ? ORDER BY i.created DESC, i.id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, err
	}

	return scanImages(rows)
}

// ImagesByIDs returns the images whose ids appear in ids, in the order of ids.
//
// Unknown ids are skipped.
func (s *Store) ImagesByIDs(ctx context.Context, ids []int64) ([]Image, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+imageColumns+imageFrom+` WHERE i.id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, err
	}

	found, err := scanImages(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]Image, len(found))
	for _, img := range found {
		byID[img.ID] = img
	}

	ordered := make([]Image, 0, len(found))

	for _, id := range ids {
		if img, ok := byID[id]; ok {
			ordered = append(ordered, img)
		}
	}

	return ordered, nil
}
