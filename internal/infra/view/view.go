// Package view renders the HTML pages of the blog from embedded templates.
package view

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/quewww/blog/internal/domain"
	context_ "github.com/quewww/blog/internal/infra/context"
)

// Page names.
const (
	PageIndex    = "index"
	PageAbout    = "about"
	PagePost     = "post"
	PagePostForm = "post_form"
	PageLogin    = "login"
	PageRegister = "register"
	PageProfile  = "profile"
)

// ErrUnknownPage is returned when rendering a page that was not parsed.
var ErrUnknownPage = errors.New("unknown page")

//go:embed templates/*.html
var templateFS embed.FS

//nolint:gochecknoglobals
var functions = template.FuncMap{
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}

		return t.Format("02 Jan 2006, 15:04")
	},
}

// Data is the model passed to every page.
type Data struct {
	Title       string
	CurrentUser *domain.User
	Profile     *domain.User
	Post        *domain.Post
	Posts       []domain.Post
	Form        domain.PostDraft
	Action      string
}

// Renderer executes the parsed page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the layout, partials and every page template.
func NewRenderer() (*Renderer, error) {
	pageFiles, err := fs.Glob(templateFS, "templates/*.page.html")
	if err != nil {
		return nil, fmt.Errorf("glob pages: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageFiles))

	for _, file := range pageFiles {
		name := strings.TrimSuffix(strings.TrimPrefix(file, "templates/"), ".page.html")

		ts, err := template.New(name).Funcs(functions).ParseFS(templateFS,
			"templates/base.layout.html",
			"templates/*.partial.html",
			file,
		)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}

		pages[name] = ts
	}

	return &Renderer{pages: pages}, nil
}

// Render writes page with the given status. The current user is taken from
// the request context when data does not set one.
func (v *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data Data) error {
	ts, ok := v.pages[page]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPage, page)
	}

	if data.CurrentUser == nil {
		data.CurrentUser, _ = context_.UserFromContext(r.Context())
	}

	var buf bytes.Buffer

	if err := ts.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("execute page %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write page %s: %w", page, err)
	}

	return nil
}
