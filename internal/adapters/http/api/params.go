package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/stationlens/internal/domain/search"
	"github.com/okian/stationlens/internal/domain/station"
)

// Query parameter names.
const (
	paramQuery = "q"
	paramScope = "scope"
	paramYear  = "year"
	paramLimit = "limit"
	paramStart = "start"
	paramEnd   = "end"
)

// parseYear reads an optional integer year within station.MinYear..MaxYear.
// Absent or blank means NoYear.
func parseYear(values url.Values, name string) (station.Year, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return station.NoYear, nil
	}
	y, err := strconv.Atoi(raw)
	if err != nil || !station.InRange(y) {
		return station.NoYear, fmt.Errorf("%s must be an integer year in [%d, %d], got %q",
			name, station.MinYear, station.MaxYear, raw)
	}
	return station.YearOf(y), nil
}

func parseScope(values url.Values) (search.Scope, error) {
	return search.ParseScope(values.Get(paramScope))
}

// parseLimit reads an optional positive limit. Absent means 0 (server cap).
func parseLimit(values url.Values) (int, error) {
	raw := strings.TrimSpace(values.Get(paramLimit))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("limit must be a positive integer, got %q", raw)
	}
	return n, nil
}
