package site

import (
	"embed"
	"io/fs"
)

//go:embed static/*
var staticFS embed.FS

// landingFS returns the embedded site rooted at static/.
func landingFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return staticFS
	}
	return sub
}
