package view

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"
)

const layoutFile = "layout.html"

// Page is the data every template receives.
type Page struct {
	Title     string
	Action    string
	IsAdmin   bool
	IsLogged  bool
	UserName  string
	CSRFToken string
	Errors    []string
	Success   []string
	Version   string
	Color     string
	Data      any
}

type Renderer struct {
	pages   map[string]*template.Template
	version string
	color   string
}

var funcs = template.FuncMap{
	// escaped marks text that was HTML-escaped before it was stored.
	"escaped": func(s string) template.HTML { return template.HTML(s) },
	// plain undoes the storage escaping for form fields; the template
	// escapes it again on output.
	"plain": html.UnescapeString,
}

// NewRenderer parses every page under fsys together with the shared layout.
// Page names are their paths without the .html suffix, e.g. "blog/index".
func NewRenderer(fsys fs.FS, version, color string) (*Renderer, error) {
	pages := map[string]*template.Template{}
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path == layoutFile || !strings.HasSuffix(path, ".html") {
			return nil
		}
		t, err := template.New(layoutFile).Funcs(funcs).ParseFS(fsys, layoutFile, path)
		if err != nil {
			return fmt.Errorf("view: parse %s: %w", path, err)
		}
		pages[strings.TrimSuffix(path, ".html")] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Renderer{pages: pages, version: version, color: color}, nil
}

// Render writes page name with the given status. The page is executed into
// a buffer first so a template failure still yields a clean 500.
func (v *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) {
	t, ok := v.pages[name]
	if !ok {
		log.Printf("ERROR: view: unknown page %q", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	page.Version = v.version
	page.Color = v.color

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		log.Printf("ERROR: view: render %s: %v", name, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
