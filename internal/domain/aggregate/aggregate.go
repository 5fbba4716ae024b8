// Package aggregate turns a station collection into active/inactive counts
// for one year or for every year of a range.
package aggregate

import (
	"time"

	"github.com/okian/stationlens/internal/domain/station"
)

// maxPrealloc bounds the capacity BuildSeries reserves up front.
const maxPrealloc = 4096

// HistoricalFloor is the first year of a default series.
const HistoricalFloor = 1900

// Counts is the active/inactive split of a collection for one year.
// Inactive is always Total - Active.
type Counts struct {
	Year     int `json:"year"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
	Total    int `json:"total"`
}

// CountAt classifies every station for year.
func CountAt(stations []station.Station, year int) Counts {
	active := 0
	for _, s := range stations {
		if station.IsActive(s, year) {
			active++
		}
	}
	total := len(stations)
	return Counts{
		Year:     year,
		Active:   active,
		Inactive: total - active,
		Total:    total,
	}
}

// BuildSeries returns one Counts per year in [start, end], ascending.
// An empty collection still yields an entry per year; start > end yields an
// empty series.
func BuildSeries(stations []station.Station, start, end int) []Counts {
	if start > end {
		return []Counts{}
	}
	// end-start in uint64 cannot overflow once start <= end.
	size := maxPrealloc
	if span := uint64(end) - uint64(start); span < maxPrealloc {
		size = int(span) + 1
	}
	series := make([]Counts, 0, size)
	for year := start; ; year++ {
		series = append(series, CountAt(stations, year))
		if year == end {
			break
		}
	}
	return series
}

// ResolveEndYear picks the last year of a default series: the feed's default
// year when present, otherwise the calendar year of now().
func ResolveEndYear(defaultYear station.Year, now func() time.Time) int {
	if y, ok := defaultYear.Get(); ok {
		return y
	}
	if now == nil {
		now = time.Now
	}
	return now().Year()
}

// RequireEndYear is ResolveEndYear without the clock fallback.
func RequireEndYear(defaultYear station.Year) (int, error) {
	if y, ok := defaultYear.Get(); ok {
		return y, nil
	}
	return 0, ErrNoDefaultYear
}
