package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOccursOn(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 15, 0, 0, 0, time.UTC)
	}
	// 2024-05-01 is a Wednesday.
	cases := []struct {
		name string
		ev   Event
		on   time.Time
		want bool
	}{
		{"one time same day", Event{DateTime: "2024-05-01T11:00:00", Repeat: Recurrence{Kind: RepeatOneTime}}, day(2024, 5, 1), true},
		{"one time other day", Event{DateTime: "2024-05-01T11:00:00", Repeat: Recurrence{Kind: RepeatOneTime}}, day(2024, 5, 2), false},
		{"before start", Event{DateTime: "2024-05-01T11:00:00", Repeat: Recurrence{Kind: RepeatDaily}}, day(2024, 4, 30), false},
		{"daily", Event{DateTime: "2024-05-01T11:00:00", Repeat: Recurrence{Kind: RepeatDaily}}, day(2024, 6, 9), true},
		{"daily after end", Event{DateTime: "2024-05-01T11:00:00", RepeatEnd: "2024-05-31T00:00:00", Repeat: Recurrence{Kind: RepeatDaily}}, day(2024, 6, 1), false},
		{"weekly listed day", Event{DateTime: "2024-05-01T11:00:00", Repeat: Recurrence{Kind: RepeatWeekly, Days: []string{"FRIDAY"}, Spacing: 1}}, day(2024, 5, 3), true},
		{"weekly unlisted day", Event{DateTime: "2024-05-01T11:00:00", Repeat: Recurrence{Kind: RepeatWeekly, Days: []string{"FRIDAY"}, Spacing: 1}}, day(2024, 5, 4), false},
		{"fortnightly off week", Event{DateTime: "2024-05-01T11:00:00", Repeat: Recurrence{Kind: RepeatWeekly, Days: []string{"FRIDAY"}, Spacing: 2}}, day(2024, 5, 10), false},
		{"fortnightly on week", Event{DateTime: "2024-05-01T11:00:00", Repeat: Recurrence{Kind: RepeatWeekly, Days: []string{"FRIDAY"}, Spacing: 2}}, day(2024, 5, 17), true},
		{"monthly", Event{DateTime: "2024-05-01T11:00:00", Repeat: Recurrence{Kind: RepeatMonthly, DayOfMonth: 15, Spacing: 1}}, day(2024, 7, 15), true},
		{"quarterly off month", Event{DateTime: "2024-05-01T11:00:00", Repeat: Recurrence{Kind: RepeatMonthly, DayOfMonth: 15, Spacing: 3}}, day(2024, 7, 15), false},
		{"quarterly on month", Event{DateTime: "2024-05-01T11:00:00", Repeat: Recurrence{Kind: RepeatMonthly, DayOfMonth: 15, Spacing: 3}}, day(2024, 8, 15), true},
		{"yearly", Event{DateTime: "2024-05-01T11:00:00", Repeat: Recurrence{Kind: RepeatYearly, Month: "March", DayOfMonth: 3}}, day(2025, 3, 3), true},
		{"yearly wrong month", Event{DateTime: "2024-05-01T11:00:00", Repeat: Recurrence{Kind: RepeatYearly, Month: "March", DayOfMonth: 3}}, day(2025, 4, 3), false},
		{"unparseable start", Event{DateTime: "soon", Repeat: Recurrence{Kind: RepeatDaily}}, day(2024, 5, 1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, OccursOn(tc.ev, tc.on))
		})
	}
}
