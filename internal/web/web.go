// Package web embeds the static dashboard frontend.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var static embed.FS

// Assets returns the embedded frontend filesystem rooted at the
// directory containing index.html.
func Assets() (fs.FS, error) {
	return fs.Sub(static, "static")
}
