package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Event is a scheduled stop of a vendor at a location.
type Event struct {
	ID        Ref        `json:"id"`
	UUID      string     `json:"uuid"`
	Name      string     `json:"name"`
	DateTime  string     `json:"datetime"`
	Location  string     `json:"location"`
	Menu      *Ref       `json:"menu"`
	Repeat    Recurrence `json:"repeat_schedule"`
	RepeatEnd string     `json:"repeat_end"`
	Vendor    *Ref       `json:"vendor"`
}

// Key identifies the event, preferring the uuid over the record id.
func (e Event) Key() string {
	if e.UUID != "" {
		return e.UUID
	}
	return e.ID.ID
}

// VendorID is the id of the linked vendor, or "".
func (e Event) VendorID() string {
	if e.Vendor == nil {
		return ""
	}
	return e.Vendor.ID
}

// DecodeEvents reads an event list from a fetch payload. Malformed entries are skipped.
func DecodeEvents(payload any) ([]Event, error) {
	items, err := listOf(payload, "events")
	if err != nil {
		return nil, err
	}
	out := make([]Event, 0, len(items))
	for _, item := range items {
		var e Event
		if decodeItem(item, &e) != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// EventsForVendor returns the events linked to v, either through the event's vendor link
// or through the vendor's own event list, ordered by datetime.
func EventsForVendor(events []Event, v Vendor) []Event {
	keys := map[string]struct{}{}
	for _, k := range []string{v.UUID, v.ID.ID} {
		if k != "" {
			keys[k] = struct{}{}
		}
	}
	listed := map[string]struct{}{}
	for _, ref := range v.Events {
		if ref.ID != "" {
			listed[ref.ID] = struct{}{}
		}
	}

	var out []Event
	for _, e := range events {
		_, byVendor := keys[e.VendorID()]
		_, byList := listed[e.Key()]
		if !byList && e.ID.ID != "" {
			_, byList = listed[e.ID.ID]
		}
		if byVendor || byList {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DateTime < out[j].DateTime })
	return out
}

// RecurrenceKind names the repeat schedule variants stored by the backend.
type RecurrenceKind string

const (
	RepeatNone    RecurrenceKind = "None"
	RepeatOneTime RecurrenceKind = "OneTime"
	RepeatDaily   RecurrenceKind = "Daily"
	RepeatWeekly  RecurrenceKind = "Weekly"
	RepeatMonthly RecurrenceKind = "Monthly"
	RepeatYearly  RecurrenceKind = "Yearly"
)

// Recurrence is an event's repeat schedule. Only the fields of its Kind are set.
type Recurrence struct {
	Kind       RecurrenceKind
	Days       []string
	Spacing    int
	DayOfMonth int
	Month      string
}

type recurrenceFields struct {
	Days       []string `json:"days"`
	Spacing    int      `json:"spacing"`
	DayOfMonth int      `json:"day_of_month"`
	Month      string   `json:"month"`
}

// UnmarshalJSON accepts the unit variants as bare strings and the others as single-key
// objects, e.g. {"Weekly":{"days":["MONDAY"],"spacing":1}}.
func (r *Recurrence) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Recurrence{Kind: RepeatNone}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Recurrence{Kind: RecurrenceKind(s)}
		return nil
	}

	var tagged map[string]recurrenceFields
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("catalog: decode recurrence: %w", err)
	}
	if len(tagged) != 1 {
		return fmt.Errorf("catalog: recurrence wants one variant, got %d", len(tagged))
	}
	for kind, f := range tagged {
		*r = Recurrence{
			Kind:       RecurrenceKind(kind),
			Days:       f.Days,
			Spacing:    f.Spacing,
			DayOfMonth: f.DayOfMonth,
			Month:      f.Month,
		}
	}
	return nil
}

// titleCase builds a fresh Caser per call; Casers keep state and must not be shared.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// Label renders the schedule as a short English phrase.
func (r Recurrence) Label() string {
	switch r.Kind {
	case "", RepeatNone:
		return "Does not repeat"
	case RepeatOneTime:
		return "One time"
	case RepeatDaily:
		return "Every day"
	case RepeatWeekly:
		label := every(r.Spacing, "week")
		if len(r.Days) == 0 {
			return label
		}
		days := make([]string, 0, len(r.Days))
		for _, d := range r.Days {
			days = append(days, titleCase(strings.ToLower(d)))
		}
		return label + " on " + strings.Join(days, ", ")
	case RepeatMonthly:
		label := every(r.Spacing, "month")
		if r.DayOfMonth > 0 {
			label += fmt.Sprintf(" on day %d", r.DayOfMonth)
		}
		return label
	case RepeatYearly:
		if r.Month == "" {
			return "Every year"
		}
		label := "Every year on " + titleCase(strings.ToLower(r.Month))
		if r.DayOfMonth > 0 {
			label += fmt.Sprintf(" %d", r.DayOfMonth)
		}
		return label
	default:
		return titleCase(string(r.Kind))
	}
}

func every(n int, unit string) string {
	if n <= 1 {
		return "Every " + unit
	}
	return fmt.Sprintf("Every %d %ss", n, unit)
}

// TypeLabel title-cases a vendor type for display.
func TypeLabel(vendorType string) string {
	vendorType = strings.TrimSpace(vendorType)
	if vendorType == "" {
		return ""
	}
	return titleCase(strings.ReplaceAll(vendorType, "_", " "))
}
