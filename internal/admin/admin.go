// Package admin renders the server-side admin pages.
package admin

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/aTrapDeer/portfolio-cms/internal/auth"
)

//go:embed templates/*.html
var files embed.FS

// Item is one row of a section table.
type Item struct {
	ID    uint
	Label string
}

// Section is one resource managed from the admin UI.
type Section struct {
	Slug  string
	Label string
	API   string
	Items func(ctx context.Context) ([]Item, error)
}

type sectionView struct {
	Section
	Count int
}

type page struct {
	Title    string
	Identity *auth.Identity
	Sections []sectionView
	Section  Section
	Items    []Item
	Error    string
}

// Pages serves /admin, /admin/{section} and /admin/login.
type Pages struct {
	sections []Section
	tmpl     map[string]*template.Template
}

func New(sections []Section) (*Pages, error) {
	p := &Pages{sections: sections, tmpl: map[string]*template.Template{}}
	for _, name := range []string{"login", "dashboard", "section"} {
		t, err := template.ParseFS(files, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, err
		}
		p.tmpl[name] = t
	}
	return p, nil
}

// Register mounts the pages; everything except the login page is gated.
func (p *Pages) Register(mux *http.ServeMux, gate *auth.Gate) {
	mux.HandleFunc("GET "+auth.LoginPath, p.Login)
	mux.Handle("GET /admin", gate.AdminPages(http.HandlerFunc(p.Dashboard)))
	mux.Handle("GET /admin/{section}", gate.AdminPages(http.HandlerFunc(p.Section)))
}

var loginErrors = map[string]string{
	"invalid":   "Invalid email or password.",
	"throttled": "Too many attempts, try again later.",
}

func (p *Pages) Login(w http.ResponseWriter, r *http.Request) {
	p.render(w, "login", page{Title: "Sign in", Error: loginErrors[r.URL.Query().Get("error")]})
}

func (p *Pages) Dashboard(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	views := make([]sectionView, 0, len(p.sections))
	for _, s := range p.sections {
		items, err := s.Items(r.Context())
		if err != nil {
			log.Printf("admin: list %s: %v", s.Slug, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		views = append(views, sectionView{Section: s, Count: len(items)})
	}
	p.render(w, "dashboard", page{Title: "Dashboard", Identity: id, Sections: views})
}

func (p *Pages) Section(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	slug := r.PathValue("section")
	for _, s := range p.sections {
		if s.Slug != slug {
			continue
		}
		items, err := s.Items(r.Context())
		if err != nil {
			log.Printf("admin: list %s: %v", s.Slug, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		p.render(w, "section", page{Title: s.Label, Identity: id, Sections: p.views(), Section: s, Items: items})
		return
	}
	http.NotFound(w, r)
}

func (p *Pages) views() []sectionView {
	out := make([]sectionView, len(p.sections))
	for i, s := range p.sections {
		out[i] = sectionView{Section: s}
	}
	return out
}

func (p *Pages) render(w http.ResponseWriter, name string, data page) {
	var buf bytes.Buffer
	if err := p.tmpl[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Printf("admin: render %s: %v", name, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
