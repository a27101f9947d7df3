// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package images bookmarks remote pictures and toggles likes on them.
*/
package images

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"codeberg.org/pinmark/pinmark/core/actions"
	"codeberg.org/pinmark/pinmark/core/discover"
	"codeberg.org/pinmark/pinmark/core/forms"
	"codeberg.org/pinmark/pinmark/core/requests"
	"codeberg.org/pinmark/pinmark/core/slug"
	"codeberg.org/pinmark/pinmark/core/store"
	"codeberg.org/pinmark/pinmark/i18n"
)

const (
	fieldTitle       = "title"
	fieldURL         = "url"
	fieldDescription = "description"

	maxTitleLength = 200
)

const (
	msgBadExtension   i18n.MsgKey = "The given URL does not match valid image extensions."
	msgDownloadFailed i18n.MsgKey = "Could not download the image."
	msgTitleTooLong   i18n.MsgKey = "Ensure this value has at most 200 characters."
)

const (
	mediaDirPermissions  = 0o750
	mediaFilePermissions = 0o640
)

// ErrDownload wraps failures to fetch the image being bookmarked.
var ErrDownload = errors.New("failed to download image")

// CreateForm is the bookmark form.
type CreateForm struct {
	Title       string
	URL         string
	Description string
	Errors      forms.Errors
}

// NewCreateForm reads a CreateForm from submitted or query values.
func NewCreateForm(values url.Values) *CreateForm {
	return &CreateForm{
		Title:       forms.Value(values, fieldTitle),
		URL:         forms.Value(values, fieldURL),
		Description: forms.Value(values, fieldDescription),
		Errors:      forms.Errors{},
	}
}

// Validate checks the required fields and the URL extension.
func (f *CreateForm) Validate() bool {
	if f.Errors.Required(fieldTitle, f.Title) {
		f.Errors.MaxLength(fieldTitle, f.Title, maxTitleLength, msgTitleTooLong)
	}

	if f.Errors.Required(fieldURL, f.URL) && f.Errors.URL(fieldURL, f.URL) && !discover.HasAllowedExtension(f.URL) {
		f.Errors.Add(fieldURL, msgBadExtension)
	}

	return f.Errors.Valid()
}

// extension returns the lower-cased URL extension, without the dot.
func (f *CreateForm) extension() string {
	return discover.Extension(f.URL)
}

// Store is the subset of the store used by this package.
type Store interface {
	CreateImage(ctx context.Context, img store.Image) (store.Image, error)
	ImageByID(ctx context.Context, id int64) (store.Image, error)
	HasLiked(ctx context.Context, imageID, userID int64) (bool, error)
	AddLike(ctx context.Context, imageID, userID int64) (int, error)
	RemoveLike(ctx context.Context, imageID, userID int64) (int, error)
}

// Service bookmarks images into MediaRoot.
type Service struct {
	Store        Store
	Actions      *actions.Recorder
	MediaRoot    string
	MaxImageSize int64
	Now          func() time.Time
}

// Create downloads the image of a validated form, stores the file and the
// row, and records a "bookmarked image" action.
//
// A failed download is reported on the form and wrapped in ErrDownload.
func (svc *Service) Create(ctx context.Context, user store.User, form *CreateForm) (store.Image, error) {
	resp, err := requests.Download(ctx, form.URL, svc.MaxImageSize)
	if err != nil {
		form.Errors.Add(fieldURL, msgDownloadFailed)

		return store.Image{}, fmt.Errorf("%w: %w", ErrDownload, err)
	}

	rel, err := svc.writeFile(svc.filePath(form.Title, form.extension()), resp.Body)
	if err != nil {
		return store.Image{}, err
	}

	img, err := svc.Store.CreateImage(ctx, store.Image{
		UserID:      user.ID,
		Title:       form.Title,
		Slug:        slug.Make(form.Title),
		URL:         form.URL,
		File:        rel,
		Description: form.Description,
	})
	if err != nil {
		_ = os.Remove(filepath.Join(svc.MediaRoot, filepath.FromSlash(rel)))

		return store.Image{}, err
	}

	if _, err := svc.Actions.Create(ctx, user.ID, actions.VerbBookmarked, img.ID); err != nil {
		log.Warn().Err(err).Int64("image_id", img.ID).Msg("Failed to record bookmark action")
	}

	log.Info().
		Int64("image_id", img.ID).
		Str("file", rel).
		Int("size", len(resp.Body)).
		Msg("Bookmarked image")

	return img, nil
}

// filePath builds images/YYYY/MM/DD/<slug>.<ext>, relative to MediaRoot.
func (svc *Service) filePath(title, ext string) string {
	now := time.Now
	if svc.Now != nil {
		now = svc.Now
	}

	return path.Join("images", now().UTC().Format("2006/01/02"), slug.Make(title)+"."+ext)
}

// writeFile stores data at rel and returns the path actually used, which
// gets a numeric suffix when rel is taken.
func (svc *Service) writeFile(rel string, data []byte) (string, error) {
	dir := filepath.Join(svc.MediaRoot, filepath.FromSlash(path.Dir(rel)))

	if err := os.MkdirAll(dir, mediaDirPermissions); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	ext := path.Ext(rel)
	stem := strings.TrimSuffix(rel, ext)

	for i := 0; ; i++ {
		candidate := rel
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}

		full := filepath.Join(svc.MediaRoot, filepath.FromSlash(candidate))

		f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mediaFilePermissions)
		if errors.Is(err, os.ErrExist) {
			continue
		}

		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", full, err)
		}

		_, werr := f.Write(data)
		cerr := f.Close()

		if err := errors.Join(werr, cerr); err != nil {
			_ = os.Remove(full)

			return "", fmt.Errorf("failed to write %s: %w", full, err)
		}

		return candidate, nil
	}
}

// ToggleLike likes imageID for user, or removes the like if present, and
// returns whether the image is now liked along with its like count.
//
// Missing images yield store.ErrNotFound.
func (svc *Service) ToggleLike(ctx context.Context, user store.User, imageID int64) (bool, int, error) {
	liked, err := svc.Store.HasLiked(ctx, imageID, user.ID)
	if err != nil {
		return false, 0, err
	}

	if liked {
		total, err := svc.Store.RemoveLike(ctx, imageID, user.ID)

		return false, total, err
	}

	total, err := svc.Store.AddLike(ctx, imageID, user.ID)
	if err != nil {
		return false, 0, err
	}

	if _, err := svc.Actions.Create(ctx, user.ID, actions.VerbLikes, imageID); err != nil {
		log.Warn().Err(err).Int64("image_id", imageID).Msg("Failed to record like action")
	}

	return true, total, nil
}
