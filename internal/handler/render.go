package handler

import (
	"net/http"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"github.com/Webzensify/uber-web/internal/apiclient"
	"github.com/Webzensify/uber-web/internal/authflow"
	"github.com/Webzensify/uber-web/internal/middleware"
	"github.com/Webzensify/uber-web/internal/session"
	"github.com/Webzensify/uber-web/internal/validate"
	"github.com/Webzensify/uber-web/internal/view"
)

// deps is the shared wiring for every handler group.
type deps struct {
	api      *apiclient.Client
	flows    *authflow.Manager
	store    *session.Store
	renderer *view.Renderer
	logger   *zap.Logger
}

// page builds the base template envelope for the current request.
func (d *deps) page(r *http.Request, title string) view.Page {
	return view.Page{
		Title:   title,
		Session: middleware.Current(r.Context()),
		CSRF:    csrf.TemplateField(r),
	}
}

// stickyForm captures the submitted values so a failed form re-renders
// with the user's input intact.
func stickyForm(r *http.Request, fields ...string) map[string]string {
	form := make(map[string]string, len(fields))
	for _, f := range fields {
		form[f] = r.PostFormValue(f)
	}
	return form
}

// applyFieldErrors copies per-field validation messages into the page.
func applyFieldErrors(p *view.Page, err error) bool {
	fe, ok := err.(validate.FieldErrors)
	if !ok {
		return false
	}
	p.Fields = map[string]string(fe)
	return true
}
