// Package nav derives the site navigation from the route table.
package nav

import (
	"path"
	"strings"

	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/router"
)

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href   string
	Label  string
	Active bool
}

// Crumb represents a breadcrumb entry.
type Crumb struct {
	Href   string
	Label  string
	Active bool
}

// Build renders the nav entries of routes with active state given the current path.
// The first route is treated as home and only matches exactly.
func Build(routes []router.Route, currentPath string) []RenderedItem {
	currentPath = clean(currentPath)
	home := ""
	if len(routes) > 0 {
		home = routes[0].Path
	}
	items := make([]RenderedItem, 0, len(routes))
	for _, rt := range routes {
		if !rt.InNav {
			continue
		}
		items = append(items, RenderedItem{
			Href:   rt.Path,
			Label:  rt.Label,
			Active: isActive(rt.Path, home, currentPath),
		})
	}
	return items
}

func isActive(itemPath, home, currentPath string) bool {
	if itemPath == home {
		return currentPath == itemPath
	}
	// match exact or prefix boundary: "/vendors" or "/vendors/..."
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

// Breadcrumbs builds Home > Section [> label] for the current path. label names a
// detail view inside the section, e.g. a single vendor, and may be empty.
func Breadcrumbs(routes []router.Route, currentPath, label string) []Crumb {
	if len(routes) == 0 {
		return nil
	}
	currentPath = clean(currentPath)
	home := routes[0]
	crumbs := []Crumb{{Href: home.Path, Label: "Home", Active: currentPath == home.Path && label == ""}}
	if currentPath == home.Path {
		return crumbs
	}

	rt, ok := router.Lookup(routes, currentPath)
	if !ok {
		return crumbs
	}
	crumbs = append(crumbs, Crumb{Href: rt.Path, Label: rt.Label, Active: label == ""})
	if label != "" {
		crumbs = append(crumbs, Crumb{Href: rt.Path, Label: label, Active: true})
	}
	return crumbs
}

func clean(p string) string {
	if p == "" {
		return "/"
	}
	c := path.Clean(p)
	if c == "." {
		return "/"
	}
	return c
}
