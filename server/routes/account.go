// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"codeberg.org/pinmark/pinmark/assets/views"
	"codeberg.org/pinmark/pinmark/config"
	"codeberg.org/pinmark/pinmark/core/account"
	"codeberg.org/pinmark/pinmark/core/actions"
	"codeberg.org/pinmark/pinmark/core/forms"
	"codeberg.org/pinmark/pinmark/core/session"
	"codeberg.org/pinmark/pinmark/core/store"
	"codeberg.org/pinmark/pinmark/i18n"
	"codeberg.org/pinmark/pinmark/server/request_context"
	"codeberg.org/pinmark/pinmark/server/utils"
)

// DashboardPath is the landing page after login.
const DashboardPath = "/account/"

const (
	msgAuthenticated   i18n.MsgKey = "Authenticated successfully"
	msgDisabledAccount i18n.MsgKey = "Disabled account"
	msgInvalidLogin    i18n.MsgKey = "Invalid login"
	msgProfileUpdated  i18n.MsgKey = "Profile updated successfully"
	msgProfileError    i18n.MsgKey = "Error updating your profile"
)

// IndexPage sends visitors to the dashboard.
func (app *App) IndexPage(w http.ResponseWriter, r *http.Request) error {
	http.Redirect(w, r, DashboardPath, http.StatusFound)

	return nil
}

// LoginPage shows the login form and authenticates its submission.
func (app *App) LoginPage(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Cache-Control", "no-store")

	next := utils.SanitizeReturnPath(r.FormValue("next"))

	if r.Method != http.MethodPost {
		return render(w, r, "", views.Login(views.LoginData{Form: account.NewLoginForm(nil), Next: next}))
	}

	form := account.NewLoginForm(r.PostForm)
	if !form.Validate() {
		return render(w, r, "", views.Login(views.LoginData{Form: form, Next: next}))
	}

	user, err := account.Authenticate(r.Context(), app.Store, form.Username, form.Password)

	switch {
	case err == nil:
	case errors.Is(err, account.ErrDisabledAccount):
		form.Errors.Add(forms.NonField, msgDisabledAccount)

		return render(w, r, "", views.Login(views.LoginData{Form: form, Next: next}))
	case errors.Is(err, account.ErrInvalidLogin):
		form.Errors.Add(forms.NonField, msgInvalidLogin)

		return render(w, r, "", views.Login(views.LoginData{Form: form, Next: next}))
	default:
		return err
	}

	if err := session.Login(w, r, user.ID); err != nil {
		return err
	}

	log.Info().
		Int64("user_id", user.ID).
		Str("ip", utils.ClientIP(r)).
		Msg("User logged in")

	flash(w, r, session.Success, msgAuthenticated)

	if next == "" {
		next = DashboardPath
	}

	seeOther(w, r, next)

	return nil
}

// Logout ends the session.
func (app *App) Logout(w http.ResponseWriter, r *http.Request) error {
	session.Logout(w, r)

	// the layout must not show the user that was just logged out
	request_context.FromRequest(r).CommonData.User = nil

	return render(w, r, "", views.LoggedOut())
}

// Register creates an account.
func (app *App) Register(w http.ResponseWriter, r *http.Request) error {
	if r.Method != http.MethodPost {
		return render(w, r, "", views.Register(views.RegisterData{Form: account.NewRegistrationForm(nil)}))
	}

	form := account.NewRegistrationForm(r.PostForm)

	valid, err := form.Validate(r.Context(), app.Store)
	if err != nil {
		return err
	}

	if !valid {
		return render(w, r, "", views.Register(views.RegisterData{Form: form}))
	}

	user, err := account.Register(r.Context(), app.Store, form)
	if errors.Is(err, store.ErrUsernameTaken) {
		// lost a race against another registration
		return render(w, r, "", views.Register(views.RegisterData{Form: form}))
	}

	if err != nil {
		return err
	}

	if _, err := app.Actions.Create(r.Context(), user.ID, actions.VerbRegistered, 0); err != nil {
		log.Warn().Err(err).Int64("user_id", user.ID).Msg("Failed to record registration action")
	}

	return render(w, r, "", views.RegisterDone(user))
}

// EditProfile updates the name and email of the logged in user.
func (app *App) EditProfile(w http.ResponseWriter, r *http.Request) error {
	user, err := requireUser(r)
	if err != nil {
		return err
	}

	if r.Method != http.MethodPost {
		form := &account.ProfileForm{
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
			Errors:    forms.Errors{},
		}

		return render(w, r, "", views.Edit(views.EditData{Form: form}))
	}

	form := account.NewProfileForm(r.PostForm)

	valid, err := form.Validate(r.Context(), app.Store, user.ID)
	if err != nil {
		return err
	}

	if !valid {
		notify(r, session.Error, msgProfileError)

		return render(w, r, "", views.Edit(views.EditData{Form: form}))
	}

	if _, err := account.UpdateProfile(r.Context(), app.Store, user, form); err != nil {
		return err
	}

	flash(w, r, session.Success, msgProfileUpdated)
	seeOther(w, r, "/account/edit")

	return nil
}

// Dashboard shows what other users did recently and the user's own bookmarks.
func (app *App) Dashboard(w http.ResponseWriter, r *http.Request) error {
	user, err := requireUser(r)
	if err != nil {
		return err
	}

	var data views.DashboardData

	g, ctx := errgroup.WithContext(r.Context())

	g.Go(func() error {
		var err error

		data.Actions, err = app.Actions.Feed(ctx, user.ID, config.Global.Images.FeedSize)

		return err
	})

	g.Go(func() error {
		var err error

		data.Images, err = app.Store.ImagesByUser(ctx, user.ID, config.Global.Images.PerPage)

		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}

	return render(w, r, views.SectionDashboard, views.Dashboard(data))
}
