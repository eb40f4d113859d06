// Package handler serves the site's pages: the public auth surfaces and
// the signed-in dashboard and profile editor.
package handler

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/awelch/personal-site/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer executes the embedded page templates.
type Renderer struct {
	templates *template.Template
	logger    *logger.Logger
}

// NewRenderer parses the embedded templates.
func NewRenderer(logger *logger.Logger) (*Renderer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: templates, logger: logger}, nil
}

// Render writes the named template. A template failure is logged and
// surfaced as a plain 500 so the page never hangs half-written.
func (r *Renderer) Render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := r.templates.ExecuteTemplate(w, name, data); err != nil {
		r.logger.Error("Handler: template render failed",
			"template", name,
			"error", err.Error())
		http.Error(w, "something went wrong", http.StatusInternalServerError)
	}
}
