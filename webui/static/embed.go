// Package static provides embedded static assets for the web UI.
// This file uses Go's embed directive to bundle static files into the binary.
package static

import (
	"embed"
	"io/fs"
)

// StaticFS contains all embedded static assets for the web UI.
// This includes:
// - index.html (the studio page: generation form, analytics, guide)
//
//go:embed index.html
var StaticFS embed.FS

// GetFS returns the embedded filesystem for use with http.FileServer.
func GetFS() fs.FS {
	return StaticFS
}

// ReadFile reads a file from the embedded filesystem.
func ReadFile(name string) ([]byte, error) {
	return StaticFS.ReadFile(name)
}
