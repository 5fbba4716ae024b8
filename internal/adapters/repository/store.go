// Package repository holds the in-memory, versioned station snapshot.
package repository

import (
	"context"
	"time"

	"github.com/okian/stationlens/internal/domain/station"
)

// Snapshot is an immutable view of one loaded feed. Callers must not modify
// Feed.Stations or Years.
type Snapshot struct {
	// Version identifies this snapshot; memo keys are namespaced by it.
	Version  string
	LoadedAt time.Time
	Source   string
	Feed     station.Feed
	Years    []int
}

// Store provides read/replace access to the current snapshot.
type Store interface {
	// Current returns the latest snapshot or ErrNotLoaded before the first Replace.
	Current(ctx context.Context) (*Snapshot, error)

	// Replace installs feed as the new snapshot and returns it.
	Replace(ctx context.Context, feed station.Feed, source string) *Snapshot

	// Count returns the number of stations in the current snapshot.
	Count(ctx context.Context) int
}
