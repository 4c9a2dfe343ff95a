package fetch

import "strings"

// Match is the first address match of a one-line geocoder response.
type Match struct {
	Address string
	Lon     float64
	Lat     float64
}

// FirstMatch digs result.addressMatches[0] out of a GetCords payload. The payload shape
// is not guaranteed, so anything unexpected yields false.
func FirstMatch(payload any) (Match, bool) {
	root, ok := payload.(map[string]any)
	if !ok {
		return Match{}, false
	}
	result, ok := root["result"].(map[string]any)
	if !ok {
		return Match{}, false
	}
	matches, ok := result["addressMatches"].([]any)
	if !ok || len(matches) == 0 {
		return Match{}, false
	}
	first, ok := matches[0].(map[string]any)
	if !ok {
		return Match{}, false
	}
	coords, ok := first["coordinates"].(map[string]any)
	if !ok {
		return Match{}, false
	}
	x, okX := coords["x"].(float64)
	y, okY := coords["y"].(float64)
	if !okX || !okY {
		return Match{}, false
	}
	addr, _ := first["matchedAddress"].(string)
	return Match{Address: strings.TrimSpace(addr), Lon: x, Lat: y}, true
}
