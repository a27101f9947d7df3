// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/leonelquinteros/gotext"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"codeberg.org/pinmark/pinmark/server/assets"
)

var (
	// poDomain is the gettext domain loaded for each locale.
	poDomain = "pinmark"

	// localesByTag maps canonical BCP 47 tags to their loaded catalogue.
	localesByTag map[string]*gotext.Locale

	supportedTags []language.Tag

	matcher language.Matcher
)

var errNoAssets = errors.New("assets filesystem is not set")

// Setup loads every po/<locale>.po catalogue from assets.FS and builds the
// language matcher. BaseLocale is always supported and is the fallback.
//
// Calling Setup again replaces the previously loaded locales.
func Setup() error {
	Logger = log.With().Str("sys", "i18n").Logger()

	if assets.FS == nil {
		return errNoAssets
	}

	localesByTag = make(map[string]*gotext.Locale)
	supportedTags = nil
	matcher = nil

	entries, err := fs.ReadDir(assets.FS, "po")
	if err != nil {
		return fmt.Errorf("failed to read po directory: %w", err)
	}

	var loaded []language.Tag

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".po") {
			continue
		}

		fileName := entry.Name()

		t, err := language.Parse(strings.ReplaceAll(strings.TrimSuffix(fileName, ".po"), "_", "-"))
		if err != nil {
			Logger.Warn().Err(err).Str("file", fileName).Msg("Skipping invalid locale file")

			continue
		}

		canonical := t.String()

		po := gotext.NewPoFS(assets.FS)
		po.ParseFile(path.Join("po", fileName))

		loc := gotext.NewLocale("", canonical)
		loc.AddTranslator(poDomain, po)

		localesByTag[canonical] = loc
		loaded = append(loaded, t)

		Logger.Info().
			Str("locale", canonical).
			Msg("Loaded locale")
	}

	slices.SortFunc(loaded, func(a, b language.Tag) int { return strings.Compare(a.String(), b.String()) })

	// baseTag first so that it is the matcher's default.
	all := []language.Tag{baseTag}

	for _, t := range loaded {
		if t != baseTag {
			all = append(all, t)
		}
	}

	matcher = language.NewMatcher(all)
	supportedTags = all

	return nil
}
