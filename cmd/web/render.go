package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/catalog"
	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/format"
	mw "github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/middleware"
	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/observability"
)

const layoutFile = "layout.tmpl"

// pageFiles maps a view name to the template file defining its "content".
var pageFiles = map[string]string{
	"map":      "map.tmpl",
	"test":     "test.tmpl",
	"admin":    "admin.tmpl",
	"vendors":  "vendors.tmpl",
	"auth":     "auth.tmpl",
	"manage":   "manage.tmpl",
	"notfound": "notfound.tmpl",
}

// renderer parses each page together with the layout. Outside dev mode the parsed set
// is built once; in dev mode templates are reparsed on each request.
type renderer struct {
	fsys  fs.FS
	dev   bool
	cache map[string]*template.Template
}

func newRenderer(fsys fs.FS, dev bool) (*renderer, error) {
	rd := &renderer{fsys: fsys, dev: dev, cache: map[string]*template.Template{}}
	for name := range pageFiles {
		t, err := rd.parse(name)
		if err != nil {
			return nil, err
		}
		rd.cache[name] = t
	}
	return rd, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"now":       time.Now,
		"eventTime": format.EventTime,
		"typeLabel": catalog.TypeLabel,
		"host":      format.Host,
		"coords":    format.Coords,
	}
}

func (rd *renderer) parse(name string) (*template.Template, error) {
	file, ok := pageFiles[name]
	if !ok {
		return nil, fmt.Errorf("render: unknown page %q", name)
	}
	t, err := template.New(name).Funcs(templateFuncs()).ParseFS(rd.fsys, layoutFile, file)
	if err != nil {
		return nil, fmt.Errorf("render: parse %s: %w", file, err)
	}
	return t, nil
}

func (rd *renderer) lookup(name string) (*template.Template, error) {
	if rd.dev {
		return rd.parse(name)
	}
	t, ok := rd.cache[name]
	if !ok {
		return nil, fmt.Errorf("render: template %q not initialized", name)
	}
	return t, nil
}

// page executes the base layout for name with status.
func (rd *renderer) page(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	rd.execute(w, r, status, name, "base", data)
}

// fragment executes a single named block of a page, e.g. for htmx swaps.
func (rd *renderer) fragment(w http.ResponseWriter, r *http.Request, name, block string, data any) {
	rd.execute(w, r, http.StatusOK, name, block, data)
}

func (rd *renderer) execute(w http.ResponseWriter, r *http.Request, status int, name, block string, data any) {
	logger := observability.FromContext(r.Context())
	t, err := rd.lookup(name)
	if err != nil {
		logger.Error("template lookup failed", zap.String("page", name), zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, "template error")
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		logger.Error("template exec failed", zap.String("page", name), zap.String("block", block), zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, "template error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
