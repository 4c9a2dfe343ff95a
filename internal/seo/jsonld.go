package seo

import (
	"encoding/json"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// WebSite returns a minimal WebSite schema with an optional SearchAction.
func WebSite(name, url, searchActionURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if searchActionURL != "" {
		m["potentialAction"] = map[string]any{
			"@type":       "SearchAction",
			"target":      searchActionURL + "{search_term_string}",
			"query-input": "required name=search_term_string",
		}
	}
	return m
}

// FoodEstablishment describes a vendor profile.
func FoodEstablishment(name, description, cuisine, phone, email, website string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "FoodEstablishment",
		"name":     name,
	}
	for key, val := range map[string]string{
		"description":   description,
		"servesCuisine": cuisine,
		"telephone":     phone,
		"email":         email,
		"url":           website,
	} {
		if val != "" {
			m[key] = val
		}
	}
	return m
}

// EventItem is one scheduled stop for an ItemList of events.
type EventItem struct {
	Name      string
	StartDate string
	Location  string
}

// Events builds an ItemList of schema.org Event entries.
func Events(items []EventItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		ev := map[string]any{
			"@type": "Event",
			"name":  it.Name,
		}
		if it.StartDate != "" {
			ev["startDate"] = it.StartDate
		}
		if it.Location != "" {
			ev["location"] = map[string]any{"@type": "Place", "address": it.Location}
		}
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"item":     ev,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "ItemList",
		"itemListElement": el,
	}
}
