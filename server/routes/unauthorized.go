// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

// UnauthorizedError signals that the route needs a logged in user.
//
// middleware.CatchError turns it into a redirect to the login page.
type UnauthorizedError struct {
	// Next is where the login page returns to. Empty means the current URL.
	Next string
}

func (e *UnauthorizedError) Error() string {
	return "unauthorized"
}

// NewUnauthorizedError creates an UnauthorizedError returning to next.
func NewUnauthorizedError(next string) error {
	return &UnauthorizedError{Next: next}
}
