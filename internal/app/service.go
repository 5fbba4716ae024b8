// Package service owns the loaded station snapshot and serves the derived
// views (filtered pages, counts, series) required by the HTTP API and the
// report renderer.
package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/stationlens/internal/adapters/repository"
	"github.com/okian/stationlens/internal/domain/aggregate"
	"github.com/okian/stationlens/internal/domain/memo"
	"github.com/okian/stationlens/internal/domain/station"
	"github.com/okian/stationlens/pkg/logger"
)

// Fetcher loads one feed document.
type Fetcher interface {
	Fetch(ctx context.Context) (station.Feed, error)
	Source() string
}

// Service implements the API dependencies for the station dashboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	fetcher Fetcher
	store   repository.Store
	group   singleflight.Group

	// Derivation caches, keyed by snapshot version.
	filtered memo.Cache[filterKey, []station.Station]
	counts   memo.Cache[countsKey, aggregate.Counts]
	series   memo.Cache[seriesKey, []aggregate.Counts]

	// Configuration
	refreshInterval    time.Duration
	seriesStart        int
	maxSeriesYears     int
	displayLimit       int
	memoSize           int
	requireDefaultYear bool
	now                func() time.Time

	// State
	started     bool
	stopCh      chan struct{}
	wg          sync.WaitGroup
	lastErr     string
	lastAttempt time.Time
	refreshes   int64
	failures    int64

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		store:           repository.NewSnapshotStore(),
		refreshInterval: 5 * time.Minute,
		seriesStart:     aggregate.HistoricalFloor,
		maxSeriesYears:  500,
		displayLimit:    500,
		memoSize:        1024,
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}

	s.filtered = memo.New[filterKey, []station.Station](memo.WithName("filter"), memo.WithMaxSize(s.memoSize))
	s.counts = memo.New[countsKey, aggregate.Counts](memo.WithName("counts"), memo.WithMaxSize(s.memoSize))
	s.series = memo.New[seriesKey, []aggregate.Counts](memo.WithName("series"), memo.WithMaxSize(s.memoSize))
	return s
}

// Start loads the first snapshot and launches the refresh loop. A failed
// initial load is logged, not returned: the service keeps retrying and
// answers queries with repository.ErrNotLoaded until a load succeeds.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.stopCh = make(chan struct{})
	s.started = true
	s.mu.Unlock()

	s.logger.Info(ctx, "starting station service...",
		logger.String("source", s.source()),
		logger.Duration("refreshInterval", s.refreshInterval),
		logger.Int("displayLimit", s.displayLimit),
		logger.Int("memoSize", s.memoSize),
	)

	if _, err := s.Refresh(ctx); err != nil {
		s.logger.Warn(ctx, "initial feed load failed; will retry", logger.Error(err))
	}

	if s.refreshInterval > 0 {
		s.wg.Add(1)
		go s.refreshLoop(s.stopCh)
	}

	s.logger.Info(ctx, "station service started")
	return nil
}

// Stop terminates the refresh loop and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.started = false
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info(context.Background(), "station service stopped")
}

// Started reports whether Start has been called without a matching Stop.
func (s *Service) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":         s.started,
		"source":          s.source(),
		"refreshInterval": s.refreshInterval.String(),
		"displayLimit":    s.displayLimit,
		"maxSeriesYears":  s.maxSeriesYears,
		"memoSize":        s.memoSize,
		"refreshes":       s.refreshes,
		"refreshFailures": s.failures,
		"totalStations":   s.store.Count(ctx),
		"memoEntries": map[string]int{
			"filter": s.filtered.Len(),
			"counts": s.counts.Len(),
			"series": s.series.Len(),
		},
	}
	if snap, err := s.store.Current(ctx); err == nil {
		stats["version"] = snap.Version
		stats["loadedAt"] = snap.LoadedAt.UTC().Format(time.RFC3339)
	}
	if !s.lastAttempt.IsZero() {
		stats["lastAttempt"] = s.lastAttempt.UTC().Format(time.RFC3339)
	}
	if s.lastErr != "" {
		stats["lastError"] = s.lastErr
	}
	return stats
}

func (s *Service) source() string {
	if s.fetcher == nil {
		return ""
	}
	return s.fetcher.Source()
}
