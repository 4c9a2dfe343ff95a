package main

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/catalog"
	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/fetch"
	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/format"
)

const maxUpcoming = 10

// MapView is the view model of the landing map page.
type MapView struct {
	Address      string
	Match        *fetch.Match
	LookupFailed bool
	Today        string
	Stops        []MapStop
	Upcoming     []MapStop
	// StopsJSON feeds the client map script through a data attribute.
	StopsJSON string
}

// MapStop is one vendor appearance.
type MapStop struct {
	Event      string `json:"event,omitempty"`
	Vendor     string `json:"vendor"`
	VendorHref string `json:"-"`
	Location   string `json:"location"`
	When       string `json:"when"`
	Repeat     string `json:"-"`

	start time.Time
}

func buildMapView(vendors []catalog.Vendor, events []catalog.Event, now time.Time, manageHref func(string) string) MapView {
	idx := catalog.VendorIndex(vendors)
	view := MapView{Today: format.Date(now)}

	for _, e := range events {
		stop := MapStop{
			Event:    e.Name,
			Location: e.Location,
			When:     format.EventTime(e.DateTime),
			Repeat:   e.Repeat.Label(),
			Vendor:   "Unknown vendor",
		}
		if v, ok := idx[e.VendorID()]; ok {
			stop.Vendor = v.DisplayName()
			stop.VendorHref = manageHref(v.Key())
		}
		start, parsed := format.ParseEventTime(e.DateTime, now.Location())
		stop.start = start

		switch {
		case catalog.OccursOn(e, now):
			if parsed {
				stop.When = "Today at " + start.Format("3:04 PM")
			}
			view.Stops = append(view.Stops, stop)
		case parsed && start.After(now):
			view.Upcoming = append(view.Upcoming, stop)
		}
	}

	byStart := func(stops []MapStop) {
		sort.SliceStable(stops, func(i, j int) bool { return stops[i].start.Before(stops[j].start) })
	}
	byStart(view.Stops)
	byStart(view.Upcoming)
	if len(view.Upcoming) > maxUpcoming {
		view.Upcoming = view.Upcoming[:maxUpcoming]
	}

	stops := view.Stops
	if stops == nil {
		stops = []MapStop{}
	}
	if b, err := json.Marshal(stops); err == nil {
		view.StopsJSON = string(b)
	}
	return view
}
