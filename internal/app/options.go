package service

import (
	"time"

	"github.com/okian/stationlens/internal/adapters/repository"
	"github.com/okian/stationlens/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFetcher sets where snapshots are loaded from.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithStore replaces the snapshot store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithRefreshInterval sets the background re-fetch period. Zero disables it.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.refreshInterval = d
		}
	}
}

// WithSeriesStart sets the default first year of a series.
func WithSeriesStart(year int) Option {
	return func(s *Service) {
		s.seriesStart = year
	}
}

// WithMaxSeriesYears caps the number of points in one series.
func WithMaxSeriesYears(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSeriesYears = n
		}
	}
}

// WithDisplayLimit caps the number of rows in a station page.
func WithDisplayLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.displayLimit = n
		}
	}
}

// WithMemoSize bounds each derivation cache. Zero disables memoization.
func WithMemoSize(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.memoSize = n
		}
	}
}

// WithClock sets the time source for end-year fallback.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRequireDefaultYear disables the calendar-year fallback.
func WithRequireDefaultYear(require bool) Option {
	return func(s *Service) {
		s.requireDefaultYear = require
	}
}
