// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package session

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"codeberg.org/pinmark/pinmark/config"
	"codeberg.org/pinmark/pinmark/core/cookie"
	"codeberg.org/pinmark/pinmark/core/untrusted"
)

const (
	subjectFlash  = "flash"
	claimMessages = "messages"

	// flash messages only need to survive a redirect
	flashMaxAge = 5 * time.Minute

	maxFlashMessages = 8
)

// Level is the severity of a flash message, used as a CSS class.
type Level string

const (
	Success Level = "success"
	Info    Level = "info"
	Error   Level = "error"
)

// Message is a one-shot notice shown on the next rendered page.
type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// AddFlash queues msg after the messages already pending on r.
func AddFlash(w http.ResponseWriter, r *http.Request, msg Message) {
	messages := append(readFlashes(r), msg)
	if len(messages) > maxFlashMessages {
		messages = messages[len(messages)-maxFlashMessages:]
	}

	payload, err := json.Marshal(messages)
	if err != nil {
		log.Err(err).Msg("Failed to encode flash messages")

		return
	}

	token, err := config.SessionSigner.Sign(subjectFlash, flashMaxAge, map[string]string{
		claimMessages: string(payload),
	})
	if err != nil {
		log.Err(err).Msg("Failed to sign flash messages")

		return
	}

	untrusted.SetCookie(w, r, cookie.FlashCookie, token, flashMaxAge)
}

// PopFlashes returns the pending messages and clears them.
func PopFlashes(w http.ResponseWriter, r *http.Request) []Message {
	if untrusted.GetCookie(r, cookie.FlashCookie) == "" {
		return nil
	}

	untrusted.ClearCookie(w, r, cookie.FlashCookie)

	return readFlashes(r)
}

func readFlashes(r *http.Request) []Message {
	signed := untrusted.GetCookie(r, cookie.FlashCookie)
	if signed == "" {
		return nil
	}

	token, err := config.SessionSigner.Parse(subjectFlash, signed)
	if err != nil {
		return nil
	}

	raw, err := token.GetString(claimMessages)
	if err != nil {
		return nil
	}

	var messages []Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil
	}

	return messages
}
