// Package templates embeds the page templates and their metadata.
package templates

import "embed"

// FS holds the layout, one file per page, and pages.yaml.
//
//go:embed *.tmpl pages.yaml
var FS embed.FS
