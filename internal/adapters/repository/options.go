package repository

import "time"

// Option applies a configuration option to the SnapshotStore.
type Option func(*SnapshotStore)

// WithClock sets the time source used for LoadedAt.
func WithClock(now func() time.Time) Option {
	return func(s *SnapshotStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithVersioner sets the snapshot version generator. Defaults to random UUIDs.
func WithVersioner(next func() string) Option {
	return func(s *SnapshotStore) {
		if next != nil {
			s.versioner = next
		}
	}
}
