package vanilla

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl templates/components/*.tmpl
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

const (
	StylesheetName    = "dynform.css"
	RuntimeScriptName = "dynform.js"
)

// TemplatesFS exposes the embedded template bundle.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

// AssetsFS exposes the embedded CSS/JS so callers can serve them over HTTP.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}

func readAsset(name string) string {
	data, err := fs.ReadFile(embeddedAssets, "assets/"+name)
	if err != nil {
		return ""
	}
	return string(data)
}
