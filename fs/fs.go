// Package appfs embeds the app's static files: database migrations, email
// templates and assets.
package appfs

import "embed"

//go:embed migrations templates assets
var FS embed.FS
