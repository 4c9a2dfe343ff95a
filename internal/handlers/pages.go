// Package handlers holds the view model shared by every page rendered in the layout.
package handlers

import (
	"html/template"

	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/nav"
	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/seo"
)

// PageData is a generic view model for pages using the shared layout.
type PageData struct {
	Title     string
	Site      string
	SEO       seo.Meta
	JSONLD    []template.JS
	RequestID string

	// Base is the path prefix the app is mounted under, without a trailing slash.
	Base        string
	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb

	// Notices are shown above the content when a backend call failed.
	Notices []string

	// Optional per-page view model payloads
	Map     any
	Test    any
	Admin   any
	Vendors any
	Auth    any
	Manage  any
}

// AddNotice appends a notice once.
func (p *PageData) AddNotice(msg string) {
	for _, n := range p.Notices {
		if n == msg {
			return
		}
	}
	p.Notices = append(p.Notices, msg)
}

// AddJSONLD attaches a structured data block. Empty blocks are ignored.
func (p *PageData) AddJSONLD(v map[string]any) {
	if s := seo.JSON(v); s != "" {
		p.JSONLD = append(p.JSONLD, template.JS(s))
	}
}
