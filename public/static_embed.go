package public

import (
	"embed"
	"io/fs"
)

//go:embed static/*
var static embed.FS

// StaticFS exposes the page script and stylesheet.
func StaticFS() (fs.FS, error) {
	return fs.Sub(static, "static")
}
