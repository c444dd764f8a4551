package daemon

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed web
var webFS embed.FS

// staticAssets maps request paths to files under web/.
var staticAssets = map[string]string{
	"/manifest.json": "manifest.json",
	"/css/style.css": "css/style.css",
	"/js/app.js":     "js/app.js",
	"/js/i18n.js":    "js/i18n.js",
	"/icon-192.svg":  "icon-192.svg",
	"/icon-512.svg":  "icon-512.svg",
}

func parseTemplates() (*template.Template, error) {
	return template.ParseFS(webFS, "web/*.tmpl")
}

func webRoot() fs.FS {
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err)
	}
	return sub
}
