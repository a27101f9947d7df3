// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package i18n translates UI strings using GNU gettext .po catalogues
embedded under po/.

Message ids are the English UI text:

	i18n.Tr(ctx, "Invalid login")
	i18n.TrN(ctx, "{{.Count}} like", "{{.Count}} likes", n, "Count", n)

The locale is chosen per request from the "lang" query parameter, the Lang
cookie and the Accept-Language header, in that order. Missing translations
fall back to the msgid; with internationalization.strictMissingKeys set they
are logged once and wrapped as "⟦...⟧".
*/
package i18n
