package search_test

import (
	"errors"
	"testing"

	"github.com/okian/stationlens/internal/domain/search"
	"github.com/okian/stationlens/internal/domain/station"
	. "github.com/smartystreets/goconvey/convey"
)

func ids(stations []station.Station) []string {
	out := make([]string, 0, len(stations))
	for _, s := range stations {
		out = append(out, s.ID)
	}
	return out
}

func sample() []station.Station {
	return []station.Station{
		{ID: "X01", Name: "Accra", Country: "Ghana"},
		{ID: "GHA-7", Name: "Tamale", Country: "Ghana"},
		{ID: "K22", Name: "Kumasi"},
		{ID: "B10", Name: "Berlin-Dahlem", Country: "Germany"},
		{ID: "S03", Name: "Straße Nord", Country: "Deutschland"},
		{ID: "N00"},
	}
}

func TestFilter(t *testing.T) {
	Convey("Given a single Ghanaian station", t, func() {
		stations := []station.Station{{ID: "X01", Name: "Accra", Country: "Ghana"}}

		Convey("Then searching all fields finds it by country", func() {
			So(ids(search.Filter(stations, "gha", search.ScopeAll)), ShouldResemble, []string{"X01"})
		})

		Convey("Then searching only station ids does not", func() {
			So(search.Filter(stations, "gha", search.ScopeStationID), ShouldBeEmpty)
		})
	})

	Convey("Given a mixed collection", t, func() {
		stations := sample()

		Convey("When the query is blank", func() {
			Convey("Then every scope returns the whole collection in order", func() {
				for _, scope := range []search.Scope{search.ScopeAll, search.ScopeStationID, search.ScopeName, search.ScopeCountry} {
					So(search.Filter(stations, "", scope), ShouldResemble, stations)
					So(search.Filter(stations, "   \t", scope), ShouldResemble, stations)
				}
			})

			Convey("Then the result does not alias the input", func() {
				out := search.Filter(stations, "", search.ScopeAll)
				out[0].ID = "changed"
				So(stations[0].ID, ShouldEqual, "X01")
			})
		})

		Convey("When matching across all fields", func() {
			Convey("Then order is preserved and any field may match", func() {
				So(ids(search.Filter(stations, "GHA", search.ScopeAll)), ShouldResemble, []string{"X01", "GHA-7"})
			})

			Convey("Then surrounding whitespace is ignored", func() {
				So(ids(search.Filter(stations, "  kumasi ", search.ScopeAll)), ShouldResemble, []string{"K22"})
			})
		})

		Convey("When matching a single field", func() {
			Convey("Then other fields are ignored even if they would match", func() {
				So(ids(search.Filter(stations, "gha", search.ScopeStationID)), ShouldResemble, []string{"GHA-7"})
				So(ids(search.Filter(stations, "gha", search.ScopeCountry)), ShouldResemble, []string{"X01", "GHA-7"})
				So(search.Filter(stations, "gha", search.ScopeName), ShouldBeEmpty)
			})

			Convey("Then absent fields never match", func() {
				So(search.Filter(stations, "n00", search.ScopeName), ShouldBeEmpty)
				So(ids(search.Filter(stations, "n00", search.ScopeStationID)), ShouldResemble, []string{"N00"})
			})
		})

		Convey("When matching is substring containment", func() {
			Convey("Then infixes match but tokens out of order do not", func() {
				So(ids(search.Filter(stations, "lin-dah", search.ScopeName)), ShouldResemble, []string{"B10"})
				So(search.Filter(stations, "dahlem berlin", search.ScopeName), ShouldBeEmpty)
			})
		})

		Convey("When the query needs full case folding", func() {
			Convey("Then sharp s matches its folded form", func() {
				So(ids(search.Filter(stations, "STRASSE", search.ScopeName)), ShouldResemble, []string{"S03"})
			})
		})

		Convey("When filtering twice with the same query", func() {
			Convey("Then the second pass changes nothing", func() {
				for _, q := range []string{"gha", "a", "", "zzz"} {
					once := search.Filter(stations, q, search.ScopeAll)
					So(search.Filter(once, q, search.ScopeAll), ShouldResemble, once)
				}
			})
		})

		Convey("When the scope is outside the enum", func() {
			Convey("Then it behaves like ScopeAll", func() {
				So(search.Filter(stations, "gha", search.Scope(42)), ShouldResemble, search.Filter(stations, "gha", search.ScopeAll))
			})

			Convey("Then Canonical maps it to ScopeAll", func() {
				So(search.Scope(42).Canonical(), ShouldEqual, search.ScopeAll)
				So(search.ScopeCountry.Canonical(), ShouldEqual, search.ScopeCountry)
			})
		})

		Convey("When the collection is empty", func() {
			Convey("Then the result is empty", func() {
				So(search.Filter(nil, "x", search.ScopeAll), ShouldBeEmpty)
				So(search.Filter(nil, "", search.ScopeAll), ShouldBeEmpty)
			})
		})
	})
}

func TestSingleStationAndNormalize(t *testing.T) {
	Convey("Given a single station", t, func() {
		s := []station.Station{{ID: "X01", Name: "Accra", Country: "Ghana"}}

		Convey("Then scoped queries fold case and a blank query keeps it", func() {
			So(search.Filter(s, "ACC", search.ScopeName), ShouldHaveLength, 1)
			So(search.Filter(s, "acc", search.ScopeCountry), ShouldBeEmpty)
			So(search.Filter(s, " ", search.ScopeCountry), ShouldHaveLength, 1)
		})

		Convey("Then Normalize trims and folds", func() {
			So(search.Normalize("  GhAna "), ShouldEqual, "ghana")
			So(search.Normalize("\t"), ShouldEqual, "")
		})
	})
}

func TestParseScope(t *testing.T) {
	Convey("Given scope names", t, func() {
		Convey("Then known names parse and round-trip", func() {
			cases := map[string]search.Scope{
				"":           search.ScopeAll,
				"ALL":        search.ScopeAll,
				"station_id": search.ScopeStationID,
				"id":         search.ScopeStationID,
				"Name":       search.ScopeName,
				"country":    search.ScopeCountry,
			}
			for in, want := range cases {
				got, err := search.ParseScope(in)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, want)
			}
			So(search.ScopeStationID.String(), ShouldEqual, "station_id")
			So(search.ScopeCountry.String(), ShouldEqual, "country")
		})

		Convey("Then unknown names fail with ErrUnknownScope", func() {
			_, err := search.ParseScope("region")
			So(errors.Is(err, search.ErrUnknownScope), ShouldBeTrue)
			So(search.Scope(9).String(), ShouldEqual, "scope(9)")
		})
	})
}
