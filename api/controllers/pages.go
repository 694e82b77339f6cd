package controllers

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/campuskeep/staffdir-backend/pkg/logger"
)

// Pages serves the admin UI. Access control is intentionally client-side:
// every page checks credentials in the browser and bounces to the login
// page itself, so the server renders them unauthenticated.
type Pages struct {
	templates *template.Template
	logg      *logger.Logger
}

func NewPages(templatesDir string, logg *logger.Logger) (*Pages, error) {
	templates, err := template.ParseGlob(templatesDir + "/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing page templates: %w", err)
	}
	return &Pages{templates: templates, logg: logg}, nil
}

func (p *Pages) Login(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, "login.html")
}

func (p *Pages) StaffList(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, "staff_list.html")
}

func (p *Pages) Admin(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, "admin.html")
}

func (p *Pages) Registration(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, "staff_registration.html")
}

func (p *Pages) render(w http.ResponseWriter, r *http.Request, name string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := p.templates.ExecuteTemplate(w, name, nil); err != nil {
		if p.logg != nil {
			p.logg.Error(r.Context(), "page render failed", err)
		}
		http.Error(w, "page unavailable", http.StatusInternalServerError)
	}
}

// Static serves the bundled assets under /static/.
func Static(staticDir string) http.Handler {
	return http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir)))
}
