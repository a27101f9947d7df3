// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"codeberg.org/pinmark/pinmark/assets/components/partials"
	"codeberg.org/pinmark/pinmark/assets/views"
	"codeberg.org/pinmark/pinmark/config"
	"codeberg.org/pinmark/pinmark/core/discover"
	"codeberg.org/pinmark/pinmark/core/forms"
	"codeberg.org/pinmark/pinmark/core/images"
	"codeberg.org/pinmark/pinmark/core/paginator"
	"codeberg.org/pinmark/pinmark/core/session"
	"codeberg.org/pinmark/pinmark/core/store"
	"codeberg.org/pinmark/pinmark/i18n"
	"codeberg.org/pinmark/pinmark/server/request_context"
	"codeberg.org/pinmark/pinmark/server/utils"
)

const (
	msgImageAdded  i18n.MsgKey = "Image added successfully"
	msgFetchFailed i18n.MsgKey = "Could not fetch the page."
)

// ImageCreate bookmarks an image. GET pre-fills the form from the query string.
func (app *App) ImageCreate(w http.ResponseWriter, r *http.Request) error {
	user, err := requireUser(r)
	if err != nil {
		return err
	}

	if r.Method != http.MethodPost {
		return render(w, r, views.SectionImages, views.Create(views.CreateData{Form: images.NewCreateForm(r.URL.Query())}))
	}

	form := images.NewCreateForm(r.PostForm)
	if !form.Validate() {
		return render(w, r, views.SectionImages, views.Create(views.CreateData{Form: form}))
	}

	img, err := app.Images.Create(r.Context(), user, form)
	if errors.Is(err, images.ErrDownload) {
		log.Warn().
			Err(err).
			Str("url", form.URL).
			Msg("Failed to download bookmarked image")

		return render(w, r, views.SectionImages, views.Create(views.CreateData{Form: form}))
	}

	if err != nil {
		return err
	}

	flash(w, r, session.Success, msgImageAdded)
	seeOther(w, r, img.AbsoluteURL())

	return nil
}

// ImageDiscover lists the bookmarkable images found on the page at ?url=.
func (app *App) ImageDiscover(w http.ResponseWriter, r *http.Request) error {
	if _, err := requireUser(r); err != nil {
		return err
	}

	data := views.DiscoverData{
		PageURL: utils.GetQueryParam(r, "url"),
		Errors:  forms.Errors{},
	}

	if data.PageURL != "" && data.Errors.URL("url", data.PageURL) {
		result, err := discover.Images(r.Context(), data.PageURL)
		if err != nil {
			log.Warn().
				Err(err).
				Str("url", data.PageURL).
				Msg("Failed to discover images")

			data.Errors.Add("url", msgFetchFailed)
		} else {
			data.Result = result
		}
	}

	return render(w, r, views.SectionImages, views.Discover(data))
}

// ImageDetail shows an image and counts the view.
func (app *App) ImageDetail(w http.ResponseWriter, r *http.Request) error {
	id, ok := pathID(r, "id")
	if !ok {
		w.WriteHeader(http.StatusNotFound)

		return nil
	}

	img, err := app.Store.ImageByIDAndSlug(r.Context(), id, utils.GetPathVar(r, "slug"))
	if errors.Is(err, store.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)

		return nil
	}

	if err != nil {
		return err
	}

	data := views.DetailData{Image: img}

	data.Views, err = app.Ranking.RecordView(r.Context(), img.ID)
	if err != nil {
		// the page stays usable without Redis
		log.Warn().
			Err(err).
			Int64("image_id", img.ID).
			Msg("Failed to record image view")
	}

	g, ctx := errgroup.WithContext(r.Context())

	g.Go(func() error {
		var err error

		data.LikedBy, err = app.Store.LikedBy(ctx, img.ID)

		return err
	})

	if user := request_context.FromRequest(r).CommonData.User; user != nil {
		g.Go(func() error {
			var err error

			data.Liked, err = app.Store.HasLiked(ctx, img.ID, user.ID)

			return err
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return render(w, r, views.SectionImages, views.Detail(data))
}

// ImageLike toggles the like of the logged in user.
//
// htmx requests get the likes partial, plain form posts are sent back to the image.
func (app *App) ImageLike(w http.ResponseWriter, r *http.Request) error {
	user, err := requireUser(r)
	if err != nil {
		return err
	}

	id, ok := pathID(r, "id")
	if !ok {
		w.WriteHeader(http.StatusNotFound)

		return nil
	}

	liked, total, err := app.Images.ToggleLike(r.Context(), user, id)
	if errors.Is(err, store.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)

		return nil
	}

	if err != nil {
		return err
	}

	if utils.IsHtmxRequest(r) {
		return renderPartial(w, r, partials.Likes(partials.LikesData{ImageID: id, Total: total, Liked: liked}))
	}

	img, err := app.Store.ImageByID(r.Context(), id)
	if err != nil {
		return err
	}

	seeOther(w, r, img.AbsoluteURL())

	return nil
}

// imagePaginator pages through all bookmarks, newest first.
func (app *App) imagePaginator() paginator.Paginator[store.Image] {
	return paginator.Paginator[store.Image]{
		Source: paginator.Funcs[store.Image]{
			CountFunc: app.Store.CountImages,
			SliceFunc: app.Store.ListImages,
		},
		PerPage: config.Global.Images.PerPage,
	}
}

// ImageList pages through all bookmarks.
//
// With images_only set only the list fragment is rendered, and a page past
// the end renders nothing so infinite scrolling stops.
func (app *App) ImageList(w http.ResponseWriter, r *http.Request) error {
	if _, err := requireUser(r); err != nil {
		return err
	}

	pages := app.imagePaginator()
	raw := utils.GetQueryParam(r, "page")
	imagesOnly := utils.GetQueryParam(r, "images_only") != ""

	page, err := pages.Page(r.Context(), raw)

	switch {
	case errors.Is(err, paginator.ErrPageNotAnInteger):
		page, err = pages.PageNumber(r.Context(), 1)
	case errors.Is(err, paginator.ErrEmptyPage):
		if imagesOnly {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")

			return nil
		}

		page, err = pages.Lenient(r.Context(), raw)
	}

	if err != nil {
		return err
	}

	if imagesOnly {
		return renderPartial(w, r, partials.ImageList(page.Items))
	}

	return render(w, r, views.SectionImages, views.List(views.ListData{Page: page}))
}

// ImageRanking lists the most viewed images.
func (app *App) ImageRanking(w http.ResponseWriter, r *http.Request) error {
	entries, err := app.Ranking.Leaders(r.Context(), app.Store, config.Global.Images.RankingSize)
	if err != nil {
		return err
	}

	return render(w, r, views.SectionRanking, views.Ranking(views.RankingData{Entries: entries}))
}
