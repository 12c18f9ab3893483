// Package web holds the admin page shells served behind the admin gate.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses every admin page template.
func Templates() (*template.Template, error) {
	return template.ParseFS(files, "templates/*.html")
}
