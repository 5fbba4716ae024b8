// Package station holds the station feed model and the status classifier.
//
// Everything in this package is a pure function of its inputs. Decoding is
// lenient: fields with an unexpected JSON type degrade to "unknown" (strings)
// or "unbounded" (years) instead of failing the whole feed.
package station

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Station is one reporting entity of the feed.
type Station struct {
	ID        string `json:"station_id"`
	Name      string `json:"name"`
	Country   string `json:"country"`
	BeginYear Year   `json:"begin_year"`
	EndYear   Year   `json:"end_year"`
}

// UnmarshalJSON decodes a station record field by field so that a single
// badly typed field never rejects the record.
func (s *Station) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	*s = Station{
		ID:        looseString(fields["station_id"]),
		Name:      looseString(fields["name"]),
		Country:   looseString(fields["country"]),
		BeginYear: yearFromRaw(fields["begin_year"]),
		EndYear:   yearFromRaw(fields["end_year"]),
	}
	return nil
}

// looseString returns JSON strings as-is, numbers as their literal text and
// everything else as "".
func looseString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch {
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return ""
		}
		return n.String()
	default:
		return ""
	}
}

// IsActive reports whether s was operating in year. Both bounds are
// inclusive and an absent bound is open in its direction, so a station with
// BeginYear > EndYear is never active.
func IsActive(s Station, year int) bool {
	if begin, ok := s.BeginYear.Get(); ok && year < begin {
		return false
	}
	if end, ok := s.EndYear.Get(); ok && year > end {
		return false
	}
	return true
}

// ActiveIn is the method form of IsActive.
func (s Station) ActiveIn(year int) bool {
	return IsActive(s, year)
}

// Label returns a human readable name, falling back to the id.
func (s Station) Label() string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}
	return s.ID
}
