package catalog

import (
	"math"
	"strings"
	"time"

	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/format"
)

// OccursOn reports whether e has a stop on the calendar day of day, honouring its repeat
// schedule and repeat end. Events whose start cannot be parsed never occur.
func OccursOn(e Event, day time.Time) bool {
	loc := day.Location()
	start, ok := format.ParseEventTime(e.DateTime, loc)
	if !ok {
		return false
	}
	d := midnight(day)
	s := midnight(start.In(loc))
	if d.Before(s) {
		return false
	}
	if end, ok := format.ParseEventTime(e.RepeatEnd, loc); ok && d.After(midnight(end.In(loc))) {
		return false
	}

	r := e.Repeat
	switch r.Kind {
	case "", RepeatNone, RepeatOneTime:
		return d.Equal(s)
	case RepeatDaily:
		return true
	case RepeatWeekly:
		if !weekdayListed(r.Days, d.Weekday()) {
			return false
		}
		weeks := int(math.Round(weekStart(d).Sub(weekStart(s)).Hours() / (24 * 7)))
		return spaced(weeks, r.Spacing)
	case RepeatMonthly:
		dom := r.DayOfMonth
		if dom <= 0 {
			dom = s.Day()
		}
		if d.Day() != dom {
			return false
		}
		months := (d.Year()-s.Year())*12 + int(d.Month()) - int(s.Month())
		return spaced(months, r.Spacing)
	case RepeatYearly:
		month := s.Month()
		if m, ok := parseMonth(r.Month); ok {
			month = m
		}
		dom := r.DayOfMonth
		if dom <= 0 {
			dom = s.Day()
		}
		return d.Month() == month && d.Day() == dom
	default:
		return false
	}
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// weekStart returns the Monday of t's week.
func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

func spaced(n, spacing int) bool {
	if spacing <= 1 {
		return true
	}
	return n%spacing == 0
}

func weekdayListed(days []string, wd time.Weekday) bool {
	for _, d := range days {
		if strings.EqualFold(strings.TrimSpace(d), wd.String()) {
			return true
		}
	}
	return false
}

func parseMonth(s string) (time.Month, bool) {
	s = strings.TrimSpace(s)
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(m.String(), s) {
			return m, true
		}
	}
	return 0, false
}
