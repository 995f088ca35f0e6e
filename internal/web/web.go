// Package web renders the server-side HTML views.
//
// Templates are embedded at build time and parsed once at startup. Every
// view is combined with the shared layout; handlers pass plain data
// structs and no logic lives in the templates beyond ranges and
// conditionals.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html templates/admin/*.html
var templateFS embed.FS

// views lists every renderable page, keyed by the name handlers use.
var views = []string{
	"login",
	"home",
	"artists",
	"tracks",
	"albums",
	"playlist",
	"distinct_artists",
	"myplaylist",
	"error",
	"admin/login",
	"admin/dashboard",
	"admin/users",
}

// Renderer holds the parsed template set for each view.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses the embedded templates and fails fast on any parse
// error so broken views surface at startup rather than per request.
func NewRenderer() (*Renderer, error) {
	templates := make(map[string]*template.Template, len(views))

	for _, view := range views {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+view+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse view %s: %w", view, err)
		}
		templates[view] = tmpl
	}

	return &Renderer{templates: templates}, nil
}

// Render writes the named view wrapped in the layout.
func (r *Renderer) Render(w io.Writer, view string, data any) error {
	tmpl, ok := r.templates[view]
	if !ok {
		return fmt.Errorf("unknown view %q", view)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}
