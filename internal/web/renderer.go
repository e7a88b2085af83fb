package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templatesFS embed.FS

// pages are the renderable views; each is parsed together with the layout.
var pages = []string{"landing", "signup", "login", "dashboard", "expert", "basic", "result"}

// Renderer produces HTML responses from pre-parsed templates.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	parsed := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		parsed[page] = tmpl
	}
	return &Renderer{templates: parsed}, nil
}

// Render writes the named page. CurrentUser and the CSRF field are injected
// into every render so the layout and forms can rely on them.
func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, page string, data map[string]any) {
	tmpl, ok := rn.templates[page]
	if !ok {
		log.Error().Str("page", page).Msg("Unknown template requested")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["CurrentUser"]; !ok {
		data["CurrentUser"] = ""
	}
	data["CSRFField"] = csrf.TemplateField(r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		log.Error().Err(err).Str("page", page).Msg("Failed to render template")
	}
}
