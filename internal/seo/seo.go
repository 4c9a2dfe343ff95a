// Package seo loads per-page metadata and builds structured data for the page head.
package seo

import (
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultSiteName = "Food Truck Finder"

type OpenGraph struct {
	Title       string
	Description string
	Type        string
}

// Meta is the head metadata for one page.
type Meta struct {
	Title       string
	Description string
	Robots      string
	OG          OpenGraph
}

// Pages is the metadata table read from pages.yaml, keyed by route name.
type Pages struct {
	Site  string
	pages map[string]Meta
}

type pagesFile struct {
	Site  string               `yaml:"site"`
	Pages map[string]pageEntry `yaml:"pages"`
}

type pageEntry struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Robots      string `yaml:"robots"`
	OGType      string `yaml:"og_type"`
}

// LoadPages parses the metadata file name from fsys.
func LoadPages(fsys fs.FS, name string) (Pages, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Pages{}, fmt.Errorf("seo: read %s: %w", name, err)
	}
	var file pagesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Pages{}, fmt.Errorf("seo: parse %s: %w", name, err)
	}

	site := strings.TrimSpace(file.Site)
	if site == "" {
		site = defaultSiteName
	}
	out := Pages{Site: site, pages: make(map[string]Meta, len(file.Pages))}
	for key, p := range file.Pages {
		ogType := p.OGType
		if ogType == "" {
			ogType = "website"
		}
		out.pages[key] = Meta{
			Title:       strings.TrimSpace(p.Title),
			Description: strings.TrimSpace(p.Description),
			Robots:      p.Robots,
			OG: OpenGraph{
				Title:       strings.TrimSpace(p.Title),
				Description: strings.TrimSpace(p.Description),
				Type:        ogType,
			},
		}
	}
	return out, nil
}

// For returns the metadata of the named page with the site name appended to the title.
// Unknown names fall back to the bare site name.
func (p Pages) For(name string) Meta {
	site := p.Site
	if site == "" {
		site = defaultSiteName
	}
	m, ok := p.pages[name]
	if !ok || m.Title == "" {
		m.Title = site
		m.OG.Title = site
		return m
	}
	m.Title = m.Title + " | " + site
	return m
}
