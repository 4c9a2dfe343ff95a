// Package router holds the static route table that maps URL paths to pages.
package router

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Page identifies the page component a route resolves to.
type Page string

const (
	PageMap      Page = "map"
	PageTest     Page = "test"
	PageAdmin    Page = "admin"
	PageInfo     Page = "info"
	PageLogin    Page = "login"
	PageRegister Page = "register"
	PageVendor   Page = "vendor"
)

// Route binds a path to a page.
type Route struct {
	Path  string
	Name  string
	Page  Page
	Label string
	InNav bool
}

// entries is relative to the base prefix and must stay in sync with the page handlers
// registered in cmd/web.
var entries = []Route{
	{Path: "/", Name: "map", Page: PageMap, Label: "Map", InNav: true},
	{Path: "/test", Name: "test", Page: PageTest, Label: "Test"},
	{Path: "/balderdash", Name: "admin", Page: PageAdmin, Label: "Admin"},
	{Path: "/vendors", Name: "vendors", Page: PageInfo, Label: "Vendors", InNav: true},
	{Path: "/login", Name: "login", Page: PageLogin, Label: "Log in", InNav: true},
	{Path: "/register", Name: "register", Page: PageRegister, Label: "Register", InNav: true},
	{Path: "/manage", Name: "manage", Page: PageVendor, Label: "Manage", InNav: true},
}

// Table returns the ordered route entries rooted at base. The slice is a fresh copy.
func Table(base string) []Route {
	base = cleanBase(base)
	out := make([]Route, len(entries))
	for i, e := range entries {
		e.Path = join(base, e.Path)
		out[i] = e
	}
	return out
}

// Validate reports malformed or colliding entries.
func Validate(routes []Route) error {
	var errs []error
	paths := make(map[string]struct{}, len(routes))
	names := make(map[string]struct{}, len(routes))
	for i, rt := range routes {
		switch {
		case rt.Path == "":
			errs = append(errs, fmt.Errorf("router: route %d has an empty path", i))
		case !strings.HasPrefix(rt.Path, "/"):
			errs = append(errs, fmt.Errorf("router: route %q is not absolute", rt.Path))
		default:
			if _, dup := paths[rt.Path]; dup {
				errs = append(errs, fmt.Errorf("router: duplicate path %q", rt.Path))
			}
			paths[rt.Path] = struct{}{}
		}
		if rt.Name == "" {
			errs = append(errs, fmt.Errorf("router: route %q has an empty name", rt.Path))
			continue
		}
		if _, dup := names[rt.Name]; dup {
			errs = append(errs, fmt.Errorf("router: duplicate name %q", rt.Name))
		}
		names[rt.Name] = struct{}{}
	}
	return errors.Join(errs...)
}

// Lookup finds the route registered for p. A trailing slash is ignored.
func Lookup(routes []Route, p string) (Route, bool) {
	if p == "" {
		p = "/"
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	for _, rt := range routes {
		if rt.Path == p {
			return rt, true
		}
	}
	return Route{}, false
}

// ByName finds a route by its name.
func ByName(routes []Route, name string) (Route, bool) {
	for _, rt := range routes {
		if rt.Name == name {
			return rt, true
		}
	}
	return Route{}, false
}

// Mount registers a GET handler for every route. Every page in the table must have a handler.
func Mount(r chi.Router, routes []Route, handlers map[Page]http.HandlerFunc) error {
	if err := Validate(routes); err != nil {
		return err
	}
	for _, rt := range routes {
		h, ok := handlers[rt.Page]
		if !ok || h == nil {
			return fmt.Errorf("router: no handler for page %q (%s)", rt.Page, rt.Path)
		}
		r.Get(rt.Path, h)
	}
	return nil
}

func cleanBase(base string) string {
	base = strings.TrimSpace(base)
	if base == "" || base == "/" {
		return "/"
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return path.Clean(base)
}

func join(base, p string) string {
	if base == "/" {
		return p
	}
	if p == "/" {
		return base
	}
	return base + p
}
