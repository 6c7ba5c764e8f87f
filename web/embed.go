// Package web holds the embedded frontend: the HTML shell plus the
// vanilla-JS app and stylesheet it loads.
package web

import "embed"

//go:embed templates static
var FS embed.FS
