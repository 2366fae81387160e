package main

import (
	"embed"
	"io/fs"
)

//go:embed web
var webFiles embed.FS

// frontendFS returns the monitor page rooted at "web".
func frontendFS() fs.FS {
	sub, err := fs.Sub(webFiles, "web")
	if err != nil {
		panic(err)
	}
	return sub
}
