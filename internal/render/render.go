package render

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"simple-chat/internal/apperr"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"index", "chat", "error"}

const genericErrorMessage = "Something went wrong! :("

type Renderer struct {
	templates  map[string]*template.Template
	production bool
	logger     *zap.SugaredLogger
}

func New(production bool, logger *zap.SugaredLogger) (*Renderer, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		templates[page] = tmpl
	}

	return &Renderer{
		templates:  templates,
		production: production,
		logger:     logger,
	}, nil
}

// WantsJSON reports whether the caller is a script rather than a browser
// navigation.
func WantsJSON(r *http.Request) bool {
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func (rd *Renderer) JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		rd.logger.Warnw("failed to encode response", "error", err)
	}
}

func (rd *Renderer) Page(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := rd.templates[name]
	if !ok {
		rd.logger.Errorw("unknown template", "template", name)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, name+".html", data); err != nil {
		rd.logger.Errorw("failed to render template", "template", name, "error", err)
	}
}

type errorPage struct {
	Title   string
	Status  int
	Message string
}

// Error is the single place where failures turn into responses. Scripts get
// the bare status code, browsers get an error page.
func (rd *Renderer) Error(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.StatusCode(err)

	if status >= http.StatusInternalServerError {
		rd.logger.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		rd.logger.Debugw("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}

	if WantsJSON(r) {
		w.WriteHeader(status)
		return
	}

	msg := err.Error()
	if rd.production || status >= http.StatusInternalServerError {
		msg = genericErrorMessage
	}

	rd.Page(w, status, "error", errorPage{
		Title:   http.StatusText(status),
		Status:  status,
		Message: msg,
	})
}
