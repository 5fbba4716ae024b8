package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/stationlens/internal/domain/types"
	"github.com/okian/stationlens/pkg/logger"
)

const refreshKey = "refresh"

// Refresh fetches the feed and installs it as the current snapshot.
// Concurrent calls share one fetch, which is detached from the callers'
// cancellation and bounded by the fetcher's own timeout. On failure the
// previous snapshot keeps serving and the error message is kept for FeedInfo.
func (s *Service) Refresh(ctx context.Context) (types.FeedInfo, error) {
	if s.fetcher == nil {
		return s.FeedInfo(ctx), ErrNoFetcher
	}

	fetchCtx := context.WithoutCancel(ctx)
	_, err, shared := s.group.Do(refreshKey, func() (any, error) {
		return nil, s.refresh(fetchCtx)
	})
	if shared {
		s.logger.Debug(ctx, "refresh collapsed into in-flight fetch")
	}
	return s.FeedInfo(ctx), err
}

func (s *Service) refresh(ctx context.Context) error {
	start := time.Now()
	feed, err := s.fetcher.Fetch(ctx)

	s.mu.Lock()
	s.lastAttempt = start
	if err != nil {
		s.failures++
		s.lastErr = err.Error()
		s.mu.Unlock()
		s.logger.Error(ctx, "feed refresh failed",
			logger.String("source", s.fetcher.Source()),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err),
		)
		return fmt.Errorf("refresh %s: %w", s.fetcher.Source(), err)
	}
	s.refreshes++
	s.lastErr = ""
	s.mu.Unlock()

	snap := s.store.Replace(ctx, feed, s.fetcher.Source())
	s.logger.Info(ctx, "feed snapshot loaded",
		logger.String("version", snap.Version),
		logger.Int("stations", len(snap.Feed.Stations)),
		logger.String("generatedAt", snap.Feed.GeneratedAt),
		logger.String("defaultYear", snap.Feed.DefaultYear.String()),
		logger.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (s *Service) refreshLoop(stop <-chan struct{}) {
	defer s.wg.Done()

	ctx := context.Background()
	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			_, _ = s.Refresh(ctx)
		}
	}
}

// FeedInfo describes the current snapshot and the last refresh outcome.
func (s *Service) FeedInfo(ctx context.Context) types.FeedInfo {
	s.mu.RLock()
	info := types.FeedInfo{
		Source:    s.source(),
		LastError: s.lastErr,
	}
	s.mu.RUnlock()

	snap, err := s.store.Current(ctx)
	if err != nil {
		return info
	}
	loadedAt := snap.LoadedAt
	info.Loaded = true
	info.Version = snap.Version
	info.Source = snap.Source
	info.GeneratedAt = snap.Feed.GeneratedAt
	info.DefaultYear = snap.Feed.DefaultYear
	info.StationCount = len(snap.Feed.Stations)
	info.LoadedAt = &loadedAt
	return info
}
