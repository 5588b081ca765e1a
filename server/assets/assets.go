// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package assets provides access to the application's embedded files: gettext
catalogues under po/ and static files under assets/static/.
*/
package assets

import (
	"io/fs"
)

// FS provides access to the embedded file system. It is assigned by package
// main before any other package reads it.
var FS fs.FS
