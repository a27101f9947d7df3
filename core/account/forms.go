// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package account

import (
	"context"
	"errors"
	"net/url"
	"regexp"

	"codeberg.org/pinmark/pinmark/core/forms"
	"codeberg.org/pinmark/pinmark/core/store"
	"codeberg.org/pinmark/pinmark/i18n"
)

const (
	fieldUsername  = "username"
	fieldPassword  = "password"
	fieldPassword2 = "password2"
	fieldFirstName = "first_name"
	fieldLastName  = "last_name"
	fieldEmail     = "email"
)

const maxUsernameLength = 150

const (
	msgPasswordMismatch i18n.MsgKey = "Passwords don't match."
	msgEmailInUse       i18n.MsgKey = "Email already in use."
	msgUsernameTaken    i18n.MsgKey = "A user with that username already exists."
	msgUsernameInvalid  i18n.MsgKey = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	msgUsernameTooLong  i18n.MsgKey = "Ensure this value has at most 150 characters."
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// LoginForm is the login page form.
type LoginForm struct {
	Username string
	Password string
	Errors   forms.Errors
}

// NewLoginForm reads a LoginForm from submitted values.
func NewLoginForm(values url.Values) *LoginForm {
	return &LoginForm{
		Username: forms.Value(values, fieldUsername),
		Password: values.Get(fieldPassword),
		Errors:   forms.Errors{},
	}
}

// Validate checks that both fields are present.
func (f *LoginForm) Validate() bool {
	f.Errors.Required(fieldUsername, f.Username)
	f.Errors.Required(fieldPassword, f.Password)

	return f.Errors.Valid()
}

// RegistrationForm is the sign-up form.
type RegistrationForm struct {
	Username  string
	FirstName string
	Email     string
	Password  string
	Password2 string
	Errors    forms.Errors
}

// NewRegistrationForm reads a RegistrationForm from submitted values.
func NewRegistrationForm(values url.Values) *RegistrationForm {
	return &RegistrationForm{
		Username:  forms.Value(values, fieldUsername),
		FirstName: forms.Value(values, fieldFirstName),
		Email:     forms.Value(values, fieldEmail),
		Password:  values.Get(fieldPassword),
		Password2: values.Get(fieldPassword2),
		Errors:    forms.Errors{},
	}
}

// Validate checks field formats and uniqueness of the username and email.
//
// A non-nil error means the lookup failed, not that the form is invalid.
func (f *RegistrationForm) Validate(ctx context.Context, users Users) (bool, error) {
	if f.Errors.Required(fieldUsername, f.Username) &&
		f.Errors.MaxLength(fieldUsername, f.Username, maxUsernameLength, msgUsernameTooLong) {
		if !usernamePattern.MatchString(f.Username) {
			f.Errors.Add(fieldUsername, msgUsernameInvalid)
		} else {
			_, err := users.UserByUsername(ctx, f.Username)
			if err == nil {
				f.Errors.Add(fieldUsername, msgUsernameTaken)
			} else if !errors.Is(err, store.ErrNotFound) {
				return false, err
			}
		}
	}

	if f.Errors.Email(fieldEmail, f.Email) && f.Email != "" {
		taken, err := users.EmailTaken(ctx, f.Email, 0)
		if err != nil {
			return false, err
		}

		if taken {
			f.Errors.Add(fieldEmail, msgEmailInUse)
		}
	}

	f.Errors.Required(fieldPassword, f.Password)

	if f.Errors.Required(fieldPassword2, f.Password2) && f.Password != f.Password2 {
		f.Errors.Add(fieldPassword2, msgPasswordMismatch)
	}

	return f.Errors.Valid(), nil
}

// ProfileForm edits the user's name and email.
type ProfileForm struct {
	FirstName string
	LastName  string
	Email     string
	Errors    forms.Errors
}

// NewProfileForm reads a ProfileForm from submitted values.
func NewProfileForm(values url.Values) *ProfileForm {
	return &ProfileForm{
		FirstName: forms.Value(values, fieldFirstName),
		LastName:  forms.Value(values, fieldLastName),
		Email:     forms.Value(values, fieldEmail),
		Errors:    forms.Errors{},
	}
}

// Validate checks the email of userID against other users.
func (f *ProfileForm) Validate(ctx context.Context, users Users, userID int64) (bool, error) {
	if f.Errors.Email(fieldEmail, f.Email) && f.Email != "" {
		taken, err := users.EmailTaken(ctx, f.Email, userID)
		if err != nil {
			return false, err
		}

		if taken {
			f.Errors.Add(fieldEmail, msgEmailInUse)
		}
	}

	return f.Errors.Valid(), nil
}
