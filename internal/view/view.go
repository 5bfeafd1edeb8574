// Package view renders the dashboard's server-side HTML. Markup is kept
// deliberately plain; visual styling is not this module's concern.
package view

import (
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/Webzensify/uber-web/internal/domain"
)

//go:embed templates/*.html
var files embed.FS

// Page is the envelope every template receives.
type Page struct {
	Title   string
	Session domain.Session
	Flash   string
	Error   string
	Fields  map[string]string
	Form    map[string]string
	CSRF    template.HTML
	Data    any
}

// Field returns the sticky form value for name, for re-rendering a form
// after a validation failure.
func (p Page) Field(name string) string {
	return p.Form[name]
}

// FieldError returns the inline message for name, if any.
func (p Page) FieldError(name string) string {
	return p.Fields[name]
}

// Can exposes the role capability table to templates.
func (p Page) Can(c string) bool {
	return p.Session.Role.Can(domain.Capability(c))
}

type Renderer struct {
	tmpl   *template.Template
	logger *zap.Logger
}

func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	tmpl, err := template.ParseFS(files, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl, logger: logger}, nil
}

func (r *Renderer) Render(w http.ResponseWriter, status int, name string, p Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := r.tmpl.ExecuteTemplate(w, name, p); err != nil {
		r.logger.Error("template render failed",
			zap.String("template", name),
			zap.Error(err),
		)
	}
}
