package main

import (
	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/catalog"
)

// AdminView lists every vendor with its event count.
type AdminView struct {
	Rows       []AdminRow
	Total      int
	EventTotal int
}

type AdminRow struct {
	Key        string
	Name       string
	Type       string
	Email      string
	Phone      string
	Website    string
	Events     int
	ManageHref string
}

func buildAdminView(vendors []catalog.Vendor, events []catalog.Event, manageHref func(string) string) AdminView {
	view := AdminView{Total: len(vendors), EventTotal: len(events)}
	for _, v := range vendors {
		count := len(catalog.EventsForVendor(events, v))
		if events == nil {
			count = len(v.Events)
		}
		view.Rows = append(view.Rows, AdminRow{
			Key:        v.Key(),
			Name:       v.DisplayName(),
			Type:       catalog.TypeLabel(v.Type),
			Email:      v.Email,
			Phone:      v.Phone,
			Website:    v.Website,
			Events:     count,
			ManageHref: manageHref(v.Key()),
		})
	}
	return view
}
