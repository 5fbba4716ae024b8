// Package search filters station collections by a free-text query scoped to
// one or all of the searchable fields.
package search

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/okian/stationlens/internal/domain/station"
)

// Scope selects which station fields a query is compared against.
type Scope int

const (
	ScopeAll Scope = iota
	ScopeStationID
	ScopeName
	ScopeCountry
)

var scopeNames = map[Scope]string{
	ScopeAll:       "all",
	ScopeStationID: "station_id",
	ScopeName:      "name",
	ScopeCountry:   "country",
}

// String returns the wire name of the scope.
func (s Scope) String() string {
	if name, ok := scopeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("scope(%d)", int(s))
}

// Canonical returns s, or ScopeAll for values outside the enum.
func (s Scope) Canonical() Scope {
	if _, ok := scopeNames[s]; ok {
		return s
	}
	return ScopeAll
}

// ParseScope maps a wire name to a Scope. The empty string means ScopeAll.
func ParseScope(v string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "all":
		return ScopeAll, nil
	case "station_id", "station-id", "id":
		return ScopeStationID, nil
	case "name":
		return ScopeName, nil
	case "country":
		return ScopeCountry, nil
	}
	return ScopeAll, fmt.Errorf("%w: %q", ErrUnknownScope, v)
}

// Normalize trims and case-folds a query the same way Filter does.
func Normalize(query string) string {
	return fold(cases.Fold(), strings.TrimSpace(query))
}

// Filter returns the stations whose scoped fields contain query as a
// case-insensitive substring, in their original order. A blank query keeps
// every station. The result never aliases the input slice.
func Filter(stations []station.Station, query string, scope Scope) []station.Station {
	// cases.Caser is stateful, so each call gets its own.
	caser := cases.Fold()
	q := fold(caser, strings.TrimSpace(query))
	if q == "" {
		out := make([]station.Station, len(stations))
		copy(out, stations)
		return out
	}

	out := make([]station.Station, 0, len(stations))
	for _, s := range stations {
		if matches(caser, s, q, scope) {
			out = append(out, s)
		}
	}
	return out
}

// matches expects q already folded and non-empty.
func matches(caser cases.Caser, s station.Station, q string, scope Scope) bool {
	switch scope {
	case ScopeStationID:
		return contains(caser, s.ID, q)
	case ScopeName:
		return contains(caser, s.Name, q)
	case ScopeCountry:
		return contains(caser, s.Country, q)
	default:
		return contains(caser, s.ID, q) ||
			contains(caser, s.Name, q) ||
			contains(caser, s.Country, q)
	}
}

func contains(caser cases.Caser, field, q string) bool {
	if field == "" {
		return false
	}
	return strings.Contains(fold(caser, field), q)
}

func fold(caser cases.Caser, v string) string {
	if v == "" {
		return ""
	}
	return caser.String(v)
}
