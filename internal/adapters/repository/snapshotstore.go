package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/stationlens/internal/domain/station"
	"github.com/okian/stationlens/pkg/metrics"
)

// SnapshotStore keeps the current snapshot behind an atomic pointer so reads
// never block on a refresh.
type SnapshotStore struct {
	writeMu sync.Mutex
	current atomic.Pointer[Snapshot]

	now       func() time.Time
	versioner func() string
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{
		now:       time.Now,
		versioner: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the latest snapshot.
func (s *SnapshotStore) Current(_ context.Context) (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Replace copies feed into a fresh snapshot with a new version.
func (s *SnapshotStore) Replace(_ context.Context, feed station.Feed, source string) *Snapshot {
	stations := make([]station.Station, len(feed.Stations))
	copy(stations, feed.Stations)
	feed.Stations = stations

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	snap := &Snapshot{
		Version:  s.versioner(),
		LoadedAt: s.now(),
		Source:   source,
		Feed:     feed,
		Years:    station.YearAxis(stations),
	}
	s.current.Store(snap)
	metrics.RecordSnapshotSwap(len(stations), snap.LoadedAt.Unix())
	return snap
}

// Count returns the number of stations in the current snapshot, or 0.
func (s *SnapshotStore) Count(_ context.Context) int {
	snap := s.current.Load()
	if snap == nil {
		return 0
	}
	return len(snap.Feed.Stations)
}
