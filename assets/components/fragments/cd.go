// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package fragments

import (
	"context"

	"codeberg.org/pinmark/pinmark/server/request_context"
	"codeberg.org/pinmark/pinmark/server/template/commondata"
)

// CommonData returns the page data of the request rendering ctx.
func CommonData(ctx context.Context) commondata.PageCommonData {
	return request_context.FromContext(ctx).CommonData
}
