package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/stationlens/internal/domain/station"
)

func TestSnapshotStore(t *testing.T) {
	Convey("Given an empty snapshot store", t, func() {
		ctx := context.Background()
		store := NewSnapshotStore()

		Convey("Then reads fail with ErrNotLoaded", func() {
			snap, err := store.Current(ctx)
			So(snap, ShouldBeNil)
			So(errors.Is(err, ErrNotLoaded), ShouldBeTrue)
			So(store.Count(ctx), ShouldEqual, 0)
		})

		Convey("When a feed is installed", func() {
			feed := station.Feed{
				GeneratedAt: "2024-01-01",
				DefaultYear: station.YearOf(2024),
				Stations: []station.Station{
					{ID: "a", BeginYear: station.YearOf(2001)},
					{ID: "b", BeginYear: station.YearOf(1990), EndYear: station.YearOf(2001)},
				},
			}
			snap := store.Replace(ctx, feed, "http://feed.test/stations.json")

			Convey("Then it becomes current with a uuid version and a year axis", func() {
				cur, err := store.Current(ctx)
				So(err, ShouldBeNil)
				So(cur, ShouldEqual, snap)
				_, perr := uuid.Parse(cur.Version)
				So(perr, ShouldBeNil)
				So(cur.Years, ShouldResemble, []int{1990, 2001})
				So(cur.Source, ShouldEqual, "http://feed.test/stations.json")
				So(store.Count(ctx), ShouldEqual, 2)
			})

			Convey("Then mutating the caller's slice does not leak into the snapshot", func() {
				feed.Stations[0].ID = "mutated"
				So(snap.Feed.Stations[0].ID, ShouldEqual, "a")
			})

			Convey("And when it is replaced again", func() {
				next := store.Replace(ctx, station.Feed{}, "again")

				Convey("Then the version changes and the old snapshot is untouched", func() {
					So(next.Version, ShouldNotEqual, snap.Version)
					So(len(snap.Feed.Stations), ShouldEqual, 2)
					So(store.Count(ctx), ShouldEqual, 0)
				})
			})
		})
	})

	Convey("Given a store with a fixed clock and versioner", t, func() {
		ctx := context.Background()
		at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		n := 0
		store := NewSnapshotStore(
			WithClock(func() time.Time { return at }),
			WithVersioner(func() string { n++; return fmt.Sprintf("v%d", n) }),
			WithClock(nil),
		)

		Convey("Then snapshots use them", func() {
			snap := store.Replace(ctx, station.Feed{}, "file")
			So(snap.Version, ShouldEqual, "v1")
			So(snap.LoadedAt, ShouldEqual, at)
		})
	})

	Convey("Given concurrent readers and writers", t, func() {
		ctx := context.Background()
		store := NewSnapshotStore()
		store.Replace(ctx, station.Feed{}, "seed")
		var wg sync.WaitGroup

		for i := 0; i < 8; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				store.Replace(ctx, station.Feed{Stations: make([]station.Station, i)}, "w")
			}(i)
			go func() {
				defer wg.Done()
				_, _ = store.Current(ctx)
				_ = store.Count(ctx)
			}()
		}
		wg.Wait()

		Convey("Then the store still serves a snapshot", func() {
			snap, err := store.Current(ctx)
			So(err, ShouldBeNil)
			So(snap, ShouldNotBeNil)
		})
	})
}
