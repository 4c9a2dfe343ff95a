package main

import (
	"html/template"

	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/catalog"
	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/format"
	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/seo"
)

// ManageView shows a single vendor profile, or a picker when none is selected.
type ManageView struct {
	Profile *VendorProfile
	Unknown string
	Picker  []PickerItem
}

type VendorProfile struct {
	Key         string
	Name        string
	Type        string
	Description template.HTML
	Email       string
	Phone       string
	Website     string
	Menus       []string
	Events      []EventRow

	schema      map[string]any
	eventSchema []seo.EventItem
}

type EventRow struct {
	Name     string
	When     string
	Location string
	Repeat   string
	Ends     string
}

type PickerItem struct {
	Name string
	Type string
	Href string
}

func buildManageView(vendors []catalog.Vendor, events []catalog.Event, id string, manageHref func(string) string) ManageView {
	var view ManageView
	if id != "" {
		if v, ok := catalog.VendorIndex(vendors)[id]; ok {
			view.Profile = buildProfile(v, catalog.EventsForVendor(events, v))
			return view
		}
		view.Unknown = id
	}
	for _, v := range vendors {
		view.Picker = append(view.Picker, PickerItem{
			Name: v.DisplayName(),
			Type: catalog.TypeLabel(v.Type),
			Href: manageHref(v.Key()),
		})
	}
	return view
}

func buildProfile(v catalog.Vendor, events []catalog.Event) *VendorProfile {
	p := &VendorProfile{
		Key:         v.Key(),
		Name:        v.DisplayName(),
		Type:        catalog.TypeLabel(v.Type),
		Description: catalog.RenderMarkdown(v.Description),
		Email:       v.Email,
		Phone:       v.Phone,
		Website:     v.Website,
		schema:      seo.FoodEstablishment(v.DisplayName(), v.Description, v.Type, v.Phone, v.Email, v.Website),
	}
	for _, m := range v.Menus {
		p.Menus = append(p.Menus, m.ID)
	}
	for _, e := range events {
		name := e.Name
		if name == "" {
			name = p.Name
		}
		ends := ""
		if e.Repeat.Kind != catalog.RepeatNone && e.Repeat.Kind != catalog.RepeatOneTime && e.RepeatEnd != e.DateTime {
			ends = format.EventTime(e.RepeatEnd)
		}
		p.Events = append(p.Events, EventRow{
			Name:     name,
			When:     format.EventTime(e.DateTime),
			Location: e.Location,
			Repeat:   e.Repeat.Label(),
			Ends:     ends,
		})
		p.eventSchema = append(p.eventSchema, seo.EventItem{Name: name, StartDate: e.DateTime, Location: e.Location})
	}
	return p
}
