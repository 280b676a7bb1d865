// Package web holds the static assets served next to the HTMX page.
package web

import "embed"

// Static contains static/style.css and static/script.js.
//
//go:embed static
var Static embed.FS
