package station

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"
)

// Feed is one snapshot of the station metadata feed.
type Feed struct {
	GeneratedAt string    `json:"generated_at"`
	DefaultYear Year      `json:"default_year"`
	Stations    []Station `json:"stations"`
}

// Decode reads a feed document. Only a body that is not a JSON object is an
// error; a missing or mistyped stations list yields an empty collection and
// station entries that are not objects are skipped.
func Decode(r io.Reader) (Feed, error) {
	var doc map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Feed{}, fmt.Errorf("%w: %w", ErrMalformedFeed, err)
	}
	if doc == nil {
		return Feed{}, fmt.Errorf("%w: document is null", ErrMalformedFeed)
	}

	feed := Feed{
		GeneratedAt: looseString(doc["generated_at"]),
		DefaultYear: yearFromRaw(doc["default_year"]),
		Stations:    []Station{},
	}

	var records []json.RawMessage
	if err := json.Unmarshal(doc["stations"], &records); err != nil {
		return feed, nil
	}
	feed.Stations = make([]Station, 0, len(records))
	for _, rec := range records {
		rec = bytes.TrimSpace(rec)
		if len(rec) == 0 || rec[0] != '{' {
			continue
		}
		var s Station
		if err := json.Unmarshal(rec, &s); err != nil {
			continue
		}
		feed.Stations = append(feed.Stations, s)
	}
	return feed, nil
}

// YearAxis returns every present begin/end year of stations, deduplicated
// and ascending.
func YearAxis(stations []Station) []int {
	seen := make(map[int]struct{}, len(stations))
	years := make([]int, 0, len(stations))
	add := func(y Year) {
		v, ok := y.Get()
		if !ok {
			return
		}
		if _, dup := seen[v]; dup {
			return
		}
		seen[v] = struct{}{}
		years = append(years, v)
	}
	for _, s := range stations {
		add(s.BeginYear)
		add(s.EndYear)
	}
	slices.Sort(years)
	return years
}
