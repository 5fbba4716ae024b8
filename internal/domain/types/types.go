// Package types contains the response shapes shared by the service, the API
// and the report renderer.
package types

import (
	"time"

	"github.com/okian/stationlens/internal/domain/aggregate"
	"github.com/okian/stationlens/internal/domain/search"
	"github.com/okian/stationlens/internal/domain/station"
)

// StationQuery selects a filtered view of the current snapshot.
type StationQuery struct {
	Text  string
	Scope search.Scope
	// Year classifies rows / counts. NoYear means the resolved end year.
	Year station.Year
	// Limit caps returned rows; non-positive or above the display limit
	// means the display limit.
	Limit int
}

// SeriesQuery selects a historical series of a filtered view.
type SeriesQuery struct {
	Text  string
	Scope search.Scope
	// Start defaults to the configured series start year.
	Start station.Year
	// End defaults to the resolved end year.
	End station.Year
}

// FeedInfo describes the currently served snapshot.
type FeedInfo struct {
	Loaded       bool         `json:"loaded"`
	Version      string       `json:"version,omitempty"`
	Source       string       `json:"source,omitempty"`
	GeneratedAt  string       `json:"generated_at,omitempty"`
	DefaultYear  station.Year `json:"default_year"`
	StationCount int          `json:"station_count"`
	LoadedAt     *time.Time   `json:"loaded_at,omitempty"`
	LastError    string       `json:"last_error,omitempty"`
}

// StationRow is one displayed station. Active is nil when no year was resolved.
type StationRow struct {
	ID        string       `json:"station_id"`
	Name      string       `json:"name"`
	Country   string       `json:"country"`
	BeginYear station.Year `json:"begin_year"`
	EndYear   station.Year `json:"end_year"`
	Active    *bool        `json:"active,omitempty"`
}

// NewStationRow builds a row, classifying the station when year is set.
func NewStationRow(s station.Station, year station.Year) StationRow {
	row := StationRow{
		ID:        s.ID,
		Name:      s.Name,
		Country:   s.Country,
		BeginYear: s.BeginYear,
		EndYear:   s.EndYear,
	}
	if y, ok := year.Get(); ok {
		active := station.IsActive(s, y)
		row.Active = &active
	}
	return row
}

// StationPage is a capped slice of a filtered collection.
type StationPage struct {
	Version string       `json:"version"`
	Query   string       `json:"query"`
	Scope   string       `json:"scope"`
	Year    station.Year `json:"year"`
	Matched int          `json:"matched"`
	Shown   int          `json:"shown"`
	Limit   int          `json:"limit"`
	Rows    []StationRow `json:"rows"`
}

// CountsResponse is the KPI summary of a filtered collection at one year.
type CountsResponse struct {
	Version string `json:"version"`
	Query   string `json:"query"`
	Scope   string `json:"scope"`
	aggregate.Counts
}

// SeriesResponse is the historical series of a filtered collection.
type SeriesResponse struct {
	Version string             `json:"version"`
	Query   string             `json:"query"`
	Scope   string             `json:"scope"`
	Start   int                `json:"start"`
	End     int                `json:"end"`
	Points  []aggregate.Counts `json:"points"`
}
