// Package catalog turns the loosely typed vendor and event payloads returned by the backend
// into values the pages can render. Decoding is best effort: entries that do not fit are
// skipped rather than failing the page.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnexpectedShape is returned when a payload is neither a list nor an object wrapping one.
var ErrUnexpectedShape = errors.New("catalog: unexpected payload shape")

// Vendor is a food truck operator. The record's auth_token is never decoded.
type Vendor struct {
	ID          Ref    `json:"id"`
	UUID        string `json:"uuid"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"vendor_type"`
	Email       string `json:"email"`
	Phone       string `json:"phone_number"`
	Website     string `json:"website"`
	Events      []Ref  `json:"events"`
	Menus       []Ref  `json:"menus"`
}

// Key identifies the vendor, preferring the uuid over the record id.
func (v Vendor) Key() string {
	if v.UUID != "" {
		return v.UUID
	}
	return v.ID.ID
}

// DisplayName falls back to the key for vendors that never set a name.
func (v Vendor) DisplayName() string {
	if name := strings.TrimSpace(v.Name); name != "" {
		return name
	}
	if key := v.Key(); key != "" {
		return key
	}
	return "Unnamed vendor"
}

// Ref is a record link such as "vendors:ABC".
type Ref struct {
	Table string
	ID    string
}

// String renders the link in table:id form.
func (r Ref) String() string {
	if r.Table == "" {
		return r.ID
	}
	return r.Table + ":" + r.ID
}

// IsZero reports whether the link is empty.
func (r Ref) IsZero() bool {
	return r.ID == ""
}

// UnmarshalJSON accepts "tb:id", {"tb":"..","id":".."} and {"tb":"..","id":{"String":".."}}.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = parseRef(s)
		return nil
	}

	var obj struct {
		TB string          `json:"tb"`
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("catalog: decode ref: %w", err)
	}
	id, err := refID(obj.ID)
	if err != nil {
		return err
	}
	*r = Ref{Table: obj.TB, ID: id}
	return nil
}

func parseRef(s string) Ref {
	s = strings.TrimSpace(s)
	if tb, id, ok := strings.Cut(s, ":"); ok {
		return Ref{Table: tb, ID: strings.Trim(id, "⟨⟩`")}
	}
	return Ref{ID: s}
}

func refID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	var wrapped map[string]any
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return "", fmt.Errorf("catalog: decode ref id: %w", err)
	}
	for _, key := range []string{"String", "Number"} {
		if v, ok := wrapped[key]; ok {
			return fmt.Sprint(v), nil
		}
	}
	return "", fmt.Errorf("catalog: unsupported ref id %s", string(raw))
}

// DecodeVendors reads a vendor list from a fetch payload. Malformed entries are skipped.
func DecodeVendors(payload any) ([]Vendor, error) {
	items, err := listOf(payload, "vendors")
	if err != nil {
		return nil, err
	}
	out := make([]Vendor, 0, len(items))
	for _, item := range items {
		var v Vendor
		if decodeItem(item, &v) != nil {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// VendorIndex maps vendor keys, and record ids where they differ, to vendors.
func VendorIndex(vendors []Vendor) map[string]Vendor {
	idx := make(map[string]Vendor, len(vendors))
	for _, v := range vendors {
		if key := v.Key(); key != "" {
			idx[key] = v
		}
		if v.ID.ID != "" {
			idx[v.ID.ID] = v
		}
	}
	return idx
}

// Search keeps vendors whose name, type or description contains query, case-insensitively,
// and whose type equals vendorType when one is given.
func Search(vendors []Vendor, query, vendorType string) []Vendor {
	query = strings.ToLower(strings.TrimSpace(query))
	vendorType = strings.TrimSpace(vendorType)

	out := make([]Vendor, 0, len(vendors))
	for _, v := range vendors {
		if vendorType != "" && !strings.EqualFold(strings.TrimSpace(v.Type), vendorType) {
			continue
		}
		if query != "" && !matches(v, query) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func matches(v Vendor, query string) bool {
	for _, field := range []string{v.Name, v.Type, v.Description} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// Types lists the distinct non-empty vendor types, sorted.
func Types(vendors []Vendor) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, v := range vendors {
		t := strings.TrimSpace(v.Type)
		if t == "" {
			continue
		}
		k := strings.ToLower(t)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

func listOf(payload any, key string) ([]any, error) {
	switch v := payload.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	case map[string]any:
		if inner, ok := v[key].([]any); ok {
			return inner, nil
		}
		if inner, ok := v["data"].([]any); ok {
			return inner, nil
		}
	}
	return nil, fmt.Errorf("%w: want a %s list, got %T", ErrUnexpectedShape, key, payload)
}

func decodeItem(item any, dst any) error {
	if _, ok := item.(map[string]any); !ok {
		return ErrUnexpectedShape
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
