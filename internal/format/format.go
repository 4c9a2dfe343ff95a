// Package format holds small presentation helpers shared by the page templates.
package format

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// eventLayouts are tried in order. The backend stores naive local timestamps, but RFC3339
// shows up in hand-entered data too.
var eventLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseEventTime parses an event datetime string. Naive values are read in loc.
func ParseEventTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range eventLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// EventTime renders an event datetime for display, e.g. "Wed, May 1 at 11:00 AM".
// Values it cannot parse are returned trimmed but otherwise untouched.
func EventTime(s string) string {
	t, ok := ParseEventTime(s, time.Local)
	if !ok {
		return strings.TrimSpace(s)
	}
	if t.Hour() == 0 && t.Minute() == 0 && !strings.ContainsAny(s, "T ") {
		return Date(t)
	}
	return t.Format("Mon, Jan 2 at 3:04 PM")
}

// Date formats t in a short form.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// SameDay reports whether a and b fall on the same calendar day in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Coords formats a geocoder match as "lat, lon" with five decimals.
func Coords(lat, lon float64) string {
	return fmt.Sprintf("%.5f, %.5f", lat, lon)
}

// JSON pretty-prints v for the diagnostics page. Values that fail to encode are shown
// with %v.
func JSON(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(out)
}

// Host strips the scheme and trailing slash from a website for link text.
func Host(website string) string {
	s := strings.TrimSpace(website)
	for _, prefix := range []string{"https://", "http://"} {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.TrimPrefix(s, "www.")
	return strings.TrimRight(s, "/")
}
