// Package appfs exposes the embedded assets needed at runtime (DB migrations,
// email templates) so binaries stay self-contained.
package appfs

import "embed"

//go:embed migrations assets
var FS embed.FS
