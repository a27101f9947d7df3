// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package authenticated

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()

	var v Validator
	require.NoError(t, v.LoadSecretKeyFromHex(NewSecretKeyHex()))

	return &v
}

func TestSignAndParse(t *testing.T) {
	t.Parallel()

	v := newValidator(t)

	signed, err := v.Sign("session", time.Hour, map[string]string{"user_id": "42"})
	require.NoError(t, err)

	token, err := v.Parse("session", signed)
	require.NoError(t, err)

	userID, err := token.GetString("user_id")
	require.NoError(t, err)
	assert.Equal(t, "42", userID)
}

func TestParseRejects(t *testing.T) {
	t.Parallel()

	v := newValidator(t)
	other := newValidator(t)

	signed, err := v.Sign("session", time.Hour, nil)
	require.NoError(t, err)

	expired, err := v.Sign("session", -time.Minute, nil)
	require.NoError(t, err)

	_, err = v.Parse("flash", signed)
	assert.Error(t, err, "wrong subject")

	_, err = other.Parse("session", signed)
	assert.Error(t, err, "wrong key")

	_, err = v.Parse("session", expired)
	assert.Error(t, err, "expired")

	_, err = v.Parse("session", "v4.public.garbage")
	assert.Error(t, err, "malformed")
}

func TestUnloadedValidator(t *testing.T) {
	t.Parallel()

	var v Validator

	_, err := v.Sign("session", time.Hour, nil)
	assert.ErrorIs(t, err, errNoKey)

	assert.Error(t, v.LoadSecretKeyFromHex("zz"))
}
