// Package templates embeds the HTML templates and static assets served by
// the web server.
package templates

import "embed"

//go:embed base.html pages static
var FS embed.FS
