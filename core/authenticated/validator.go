// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package authenticated

import (
	"errors"
	"time"

	"aidanwoods.dev/go-paseto"
)

// domain separation key. can be anything. if you change it, past tokens will become invalid.
const Implicit = "Pinmark bookmarks every picture"

var errNoKey = errors.New("no secret key loaded")

// NewSecretKeyHex generates a fresh v4.public secret key.
func NewSecretKeyHex() string {
	return paseto.NewV4AsymmetricSecretKey().ExportHex()
}

// Validator signs and verifies v4.public tokens.
type Validator struct {
	SecretKey paseto.V4AsymmetricSecretKey
	loaded    bool
}

// LoadSecretKeyFromHex replaces the signing key.
func (psk *Validator) LoadSecretKeyFromHex(hex string) (err error) {
	psk.SecretKey, err = paseto.NewV4AsymmetricSecretKeyFromHex(hex)
	if err != nil {
		return err
	}

	psk.loaded = true

	return nil
}

// Sign issues a token for subject that expires after ttl and carries claims.
func (psk *Validator) Sign(subject string, ttl time.Duration, claims map[string]string) (string, error) {
	if !psk.loaded {
		return "", errNoKey
	}

	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(ttl))
	token.SetSubject(subject)

	for k, v := range claims {
		token.SetString(k, v)
	}

	return token.V4Sign(psk.SecretKey, []byte(Implicit)), nil
}

// Parse verifies signed and checks that it has not expired and was issued for subject.
func (psk *Validator) Parse(subject, signed string) (*paseto.Token, error) {
	if !psk.loaded {
		return nil, errNoKey
	}

	parser := paseto.MakeParser([]paseto.Rule{
		paseto.NotExpired(),
		paseto.Subject(subject),
	})

	return parser.ParseV4Public(psk.SecretKey.Public(), signed, []byte(Implicit))
}
