// Package appfs embeds the static assets the app needs at runtime:
// SQL migrations and email templates.
package appfs

import "embed"

//go:embed migrations all:templates
var FS embed.FS
