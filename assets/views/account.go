// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package views

import (
	"github.com/a-h/templ"

	"codeberg.org/pinmark/pinmark/assets/components/fragments"
	"codeberg.org/pinmark/pinmark/core/account"
	"codeberg.org/pinmark/pinmark/core/store"
	"codeberg.org/pinmark/pinmark/i18n"
	"codeberg.org/pinmark/pinmark/server/template"
)

// Form labels.
const (
	labelUsername  i18n.MsgKey = "Username"
	labelPassword  i18n.MsgKey = "Password"
	labelPassword2 i18n.MsgKey = "Repeat password"
	labelFirstName i18n.MsgKey = "First name"
	labelLastName  i18n.MsgKey = "Last name"
	labelEmail     i18n.MsgKey = "Email"
)

const msgCorrectErrors i18n.MsgKey = "Please correct the errors below."

func formErrorsNotice(valid bool) templ.Component {
	return fragments.Func(func(p *fragments.Printer) {
		if valid {
			return
		}

		p.Raw(`<p class="notice error">`)
		p.Component(msgCorrectErrors)
		p.Raw(`</p>`)
	})
}

// LoginData is the login page.
type LoginData struct {
	Form *account.LoginForm
	// Next is the sanitized return path, empty for the dashboard.
	Next string
}

// Login renders the login form.
func Login(data LoginData) templ.Component {
	const title i18n.MsgKey = "Log in"

	return Layout(title, fragments.Func(func(p *fragments.Printer) {
		form := data.Form

		p.Raw(`<h1>`)
		p.Component(title)
		p.Raw(`</h1><p>`)
		p.Tr("Please, use the following form to log in:")
		p.Raw(` <a href="/account/register">`)
		p.Tr("Create an account")
		p.Raw(`</a></p><div class="login-form"><form method="post" action="/account/login">`)
		p.Component(fragments.NonFieldErrors(form.Errors))
		p.Component(fragments.Field(fragments.Input{
			Label: labelUsername, Name: "username", Type: "text", Value: form.Username, Errors: form.Errors.Get("username"),
		}))
		p.Component(fragments.Field(fragments.Input{
			Label: labelPassword, Name: "password", Type: "password", Errors: form.Errors.Get("password"),
		}))
		p.Component(fragments.CSRFInput())

		if data.Next != "" {
			p.Raw(`<input type="hidden" name="next" value="`)
			p.Text(data.Next)
			p.Raw(`">`)
		}

		p.Raw(`<p><input type="submit" value="`)
		p.Tr("Log in")
		p.Raw(`"></p></form></div>`)
	}))
}

// LoggedOut is shown after logging out.
func LoggedOut() templ.Component {
	const title i18n.MsgKey = "Logged out"

	return Layout(title, fragments.Func(func(p *fragments.Printer) {
		p.Raw(`<h1>`)
		p.Component(title)
		p.Raw(`</h1><p>`)
		p.Tr("You have been successfully logged out.")
		p.Raw(` <a href="/account/login">`)
		p.Tr("Log in again")
		p.Raw(`</a>.</p>`)
	}))
}

// RegisterData is the sign-up page.
type RegisterData struct {
	Form *account.RegistrationForm
}

// Register renders the sign-up form.
func Register(data RegisterData) templ.Component {
	const title i18n.MsgKey = "Create an account"

	return Layout(title, fragments.Func(func(p *fragments.Printer) {
		form := data.Form

		p.Raw(`<h1>`)
		p.Component(title)
		p.Raw(`</h1>`)
		p.Component(formErrorsNotice(form.Errors.Valid()))
		p.Raw(`<form method="post" action="/account/register">`)
		p.Component(fragments.Field(fragments.Input{
			Label: labelUsername, Name: "username", Type: "text", Value: form.Username, Errors: form.Errors.Get("username"),
		}))
		p.Component(fragments.Field(fragments.Input{
			Label: labelFirstName, Name: "first_name", Type: "text", Value: form.FirstName, Errors: form.Errors.Get("first_name"),
		}))
		p.Component(fragments.Field(fragments.Input{
			Label: labelEmail, Name: "email", Type: "email", Value: form.Email, Errors: form.Errors.Get("email"),
		}))
		p.Component(fragments.Field(fragments.Input{
			Label: labelPassword, Name: "password", Type: "password", Errors: form.Errors.Get("password"),
		}))
		p.Component(fragments.Field(fragments.Input{
			Label: labelPassword2, Name: "password2", Type: "password", Errors: form.Errors.Get("password2"),
		}))
		p.Component(fragments.CSRFInput())
		p.Raw(`<p><input type="submit" value="`)
		p.Tr("Register")
		p.Raw(`"></p></form>`)
	}))
}

// RegisterDone greets a freshly registered user.
func RegisterDone(user store.User) templ.Component {
	const title i18n.MsgKey = "Welcome {{.Name}}!"

	heading := fragments.Func(func(p *fragments.Printer) {
		p.Tr(string(title), "Name", user.DisplayName())
	})

	return Layout(heading, fragments.Func(func(p *fragments.Printer) {
		p.Raw(`<h1>`)
		p.Component(heading)
		p.Raw(`</h1><p>`)
		p.Tr("Your account has been successfully created.")
		p.Raw(` <a href="/account/login">`)
		p.Tr("Log in")
		p.Raw(`</a></p>`)
	}))
}

// EditData is the profile page.
type EditData struct {
	Form *account.ProfileForm
}

// Edit renders the profile form.
func Edit(data EditData) templ.Component {
	const title i18n.MsgKey = "Edit your profile"

	return Layout(title, fragments.Func(func(p *fragments.Printer) {
		form := data.Form

		p.Raw(`<h1>`)
		p.Component(title)
		p.Raw(`</h1><form method="post" action="/account/edit">`)
		p.Component(fragments.Field(fragments.Input{
			Label: labelFirstName, Name: "first_name", Type: "text", Value: form.FirstName, Errors: form.Errors.Get("first_name"),
		}))
		p.Component(fragments.Field(fragments.Input{
			Label: labelLastName, Name: "last_name", Type: "text", Value: form.LastName, Errors: form.Errors.Get("last_name"),
		}))
		p.Component(fragments.Field(fragments.Input{
			Label: labelEmail, Name: "email", Type: "email", Value: form.Email, Errors: form.Errors.Get("email"),
		}))
		p.Component(fragments.CSRFInput())
		p.Raw(`<p><input type="submit" value="`)
		p.Tr("Save changes")
		p.Raw(`"></p></form>`)
	}))
}

// DashboardData is the landing page of a logged in user.
type DashboardData struct {
	Actions []store.Action
	Images  []store.Image
}

// Dashboard renders the activity feed and the user's own bookmarks.
func Dashboard(data DashboardData) templ.Component {
	const title i18n.MsgKey = "Dashboard"

	return Layout(title, fragments.Func(func(p *fragments.Printer) {
		p.Raw(`<h1>`)
		p.Component(title)
		p.Raw(`</h1><p><a href="/images/create" class="button">`)
		p.Tr("Bookmark an image")
		p.Raw(`</a> <a href="/images/discover" class="button">`)
		p.Tr("Find images")
		p.Raw(`</a></p><h2>`)
		p.Tr("What's happening")
		p.Raw(`</h2><div id="action-list">`)

		if len(data.Actions) == 0 {
			p.Raw(`<p>`)
			p.Tr("Nothing here yet.")
			p.Raw(`</p>`)
		}

		for _, action := range data.Actions {
			p.Component(actionItem(action))
		}

		p.Raw(`</div><h2>`)
		p.Tr("Your bookmarks")
		p.Raw(`</h2><div id="image-list">`)
		p.Component(imageGrid(data.Images))
		p.Raw(`</div>`)
	}))
}

func actionItem(action store.Action) templ.Component {
	return fragments.Func(func(p *fragments.Printer) {
		p.Raw(`<div class="action"><p><span class="user">`)
		p.Text(action.Username)
		p.Raw(`</span> `)
		p.Tr(action.Verb)

		if action.TargetImageID != 0 {
			p.Raw(` <a href="`)
			p.URL(store.Image{ID: action.TargetImageID, Slug: action.TargetSlug}.AbsoluteURL())
			p.Raw(`">`)
			p.Text(action.TargetTitle)
			p.Raw(`</a>`)
		}

		p.Raw(` `)
		p.Component(template.Ago(action.Created))
		p.Raw(`</p></div>`)
	})
}

func imageGrid(images []store.Image) templ.Component {
	return fragments.Func(func(p *fragments.Printer) {
		if len(images) == 0 {
			p.Raw(`<p>`)
			p.Tr("Nothing here yet.")
			p.Raw(`</p>`)

			return
		}

		for _, img := range images {
			p.Raw(`<div class="image">`)
			p.Component(fragments.ImageThumb(img))
			p.Raw(`</div>`)
		}
	})
}
