// Package web embeds the quiz's HTML templates and static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:templates
var templatesFS embed.FS

//go:embed all:static
var staticFS embed.FS

// Templates returns the template tree rooted at layouts/, partials/ and pages/.
func Templates() (fs.FS, error) {
	return fs.Sub(templatesFS, "templates")
}

// Static returns the files served under /static/.
func Static() (fs.FS, error) {
	return fs.Sub(staticFS, "static")
}
