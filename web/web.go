// Package web embeds page templates and static assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"

	"github.com/gin-contrib/multitemplate"
)

//go:embed templates/*.tmpl
var Templates embed.FS

//go:embed assets
var assets embed.FS

// Page views. Each is rendered inside layout.html.tmpl.
var views = []string{"index.html.tmpl", "page.html.tmpl", "error.html.tmpl"}

// Assets is the file system served below /assets/.
func Assets() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// Views builds the gin HTML renderer for every page view.
func Views(funcs template.FuncMap) (multitemplate.Render, error) {
	r := multitemplate.New()
	for _, view := range views {
		tmpl, err := template.New("layout.html.tmpl").Funcs(funcs).ParseFS(Templates, "templates/layout.html.tmpl", "templates/"+view)
		if err != nil {
			return nil, err
		}
		r.Add(view, tmpl)
	}
	return r, nil
}
