package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/stationlens/internal/adapters/repository"
	"github.com/okian/stationlens/internal/domain/aggregate"
	"github.com/okian/stationlens/internal/domain/search"
	"github.com/okian/stationlens/internal/domain/station"
	"github.com/okian/stationlens/internal/domain/types"
	"github.com/okian/stationlens/pkg/metrics"
)

type filterKey struct {
	version string
	query   string
	scope   search.Scope
}

type countsKey struct {
	filterKey
	year int
}

type seriesKey struct {
	filterKey
	start, end int
}

// Years returns the year axis of the current snapshot.
func (s *Service) Years(ctx context.Context) ([]int, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(snap.Years))
	copy(out, snap.Years)
	return out, nil
}

// EndYear resolves the last year of the default series range.
func (s *Service) EndYear(ctx context.Context) (int, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return 0, err
	}
	return s.endYear(snap)
}

// Stations returns the capped, classified page of stations matching q.
func (s *Service) Stations(ctx context.Context, q types.StationQuery) (types.StationPage, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return types.StationPage{}, err
	}

	year := q.Year
	if !year.IsSet() {
		if y, err := s.endYear(snap); err == nil {
			year = station.YearOf(y)
		} else if !errors.Is(err, aggregate.ErrNoDefaultYear) {
			return types.StationPage{}, err
		}
	}

	key, matched := s.filter(snap, q.Text, q.Scope)

	limit := q.Limit
	if limit <= 0 || limit > s.displayLimit {
		limit = s.displayLimit
	}
	shown := min(limit, len(matched))

	rows := make([]types.StationRow, shown)
	for i := range shown {
		rows[i] = types.NewStationRow(matched[i], year)
	}

	return types.StationPage{
		Version: snap.Version,
		Query:   q.Text,
		Scope:   key.scope.String(),
		Year:    year,
		Matched: len(matched),
		Shown:   shown,
		Limit:   limit,
		Rows:    rows,
	}, nil
}

// Counts returns active/inactive totals of the stations matching q.
func (s *Service) Counts(ctx context.Context, q types.StationQuery) (types.CountsResponse, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return types.CountsResponse{}, err
	}

	year, ok := q.Year.Get()
	if !ok {
		if year, err = s.endYear(snap); err != nil {
			return types.CountsResponse{}, err
		}
	}

	fk, matched := s.filter(snap, q.Text, q.Scope)
	counts := s.counts.Get(countsKey{filterKey: fk, year: year}, func() aggregate.Counts {
		defer observe("counts", time.Now())
		return aggregate.CountAt(matched, year)
	})

	return types.CountsResponse{
		Version: snap.Version,
		Query:   q.Text,
		Scope:   fk.scope.String(),
		Counts:  counts,
	}, nil
}

// Series returns one point per year of the requested range for the stations
// matching q. The returned points are shared and must not be modified.
func (s *Service) Series(ctx context.Context, q types.SeriesQuery) (types.SeriesResponse, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return types.SeriesResponse{}, err
	}

	start, ok := q.Start.Get()
	if !ok {
		start = s.seriesStart
	}
	end, ok := q.End.Get()
	if !ok {
		if end, err = s.endYear(snap); err != nil {
			return types.SeriesResponse{}, err
		}
	}
	if start <= end && uint64(end)-uint64(start) >= uint64(s.maxSeriesYears) {
		return types.SeriesResponse{}, fmt.Errorf("%w: %d..%d spans more than %d years",
			aggregate.ErrRangeTooLarge, start, end, s.maxSeriesYears)
	}

	fk, matched := s.filter(snap, q.Text, q.Scope)
	points := s.series.Get(seriesKey{filterKey: fk, start: start, end: end}, func() []aggregate.Counts {
		defer observe("series", time.Now())
		return aggregate.BuildSeries(matched, start, end)
	})

	return types.SeriesResponse{
		Version: snap.Version,
		Query:   q.Text,
		Scope:   fk.scope.String(),
		Start:   start,
		End:     end,
		Points:  points,
	}, nil
}

// filter returns the memoized subset of snap matching text within scope.
func (s *Service) filter(snap *repository.Snapshot, text string, scope search.Scope) (filterKey, []station.Station) {
	key := filterKey{
		version: snap.Version,
		query:   search.Normalize(text),
		scope:   scope.Canonical(),
	}
	matched := s.filtered.Get(key, func() []station.Station {
		defer observe("filter", time.Now())
		return search.Filter(snap.Feed.Stations, key.query, key.scope)
	})
	return key, matched
}

func (s *Service) endYear(snap *repository.Snapshot) (int, error) {
	if s.requireDefaultYear {
		return aggregate.RequireEndYear(snap.Feed.DefaultYear)
	}
	if !snap.Feed.DefaultYear.IsSet() {
		metrics.RecordDefaultYearFallback()
	}
	return aggregate.ResolveEndYear(snap.Feed.DefaultYear, s.now), nil
}

func observe(operation string, start time.Time) {
	metrics.RecordDeriveLatency(operation, float64(time.Since(start).Microseconds())/1000)
}
