package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/stationlens/internal/adapters/http/api"
	service "github.com/okian/stationlens/internal/app"
	"github.com/okian/stationlens/internal/adapters/repository"
	"github.com/okian/stationlens/internal/domain/aggregate"
	"github.com/okian/stationlens/internal/domain/station"
	"github.com/okian/stationlens/internal/domain/types"
	"github.com/okian/stationlens/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type staticFetcher struct {
	feed station.Feed
	err  error
}

func (f *staticFetcher) Fetch(context.Context) (station.Feed, error) { return f.feed, f.err }
func (f *staticFetcher) Source() string                              { return "static" }

func demoFeed() station.Feed {
	return station.Feed{
		GeneratedAt: "2024-05-01T00:00:00Z",
		DefaultYear: station.YearOf(2003),
		Stations: []station.Station{
			{ID: "AAA", Name: "Alpha", Country: "Norway", BeginYear: station.YearOf(1990), EndYear: station.YearOf(2005)},
			{ID: "X01", Name: "Accra", Country: "Ghana", BeginYear: station.YearOf(2001)},
			{ID: "KUM", Name: "Kumasi", Country: "Ghana", EndYear: station.YearOf(1999)},
		},
	}
}

// newMux wires a real service loaded with demoFeed behind the API.
func newMux(opts ...api.ServerOption) (*http.ServeMux, *service.Service) {
	svc := service.New(
		service.WithFetcher(&staticFetcher{feed: demoFeed()}),
		service.WithDisplayLimit(2),
		service.WithMaxSeriesYears(50),
	)
	if _, err := svc.Refresh(context.Background()); err != nil {
		panic(err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, opts...).Register(context.Background(), mux)
	return mux, svc
}

func do(mux http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	So(json.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
	return v
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func TestServer_Register(t *testing.T) {
	Convey("Given an API server over a loaded service", t, func() {
		mux, _ := newMux()

		Convey("Then health serves Prometheus metrics", func() {
			w := do(mux, http.MethodGet, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "stationlens_")
		})

		Convey("Then stats are JSON", func() {
			w := do(mux, http.MethodGet, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			stats := decode[map[string]any](w)
			So(stats["totalStations"], ShouldEqual, float64(3))
		})

		Convey("Then the dashboard page is served", func() {
			w := do(mux, http.MethodGet, "/dashboard")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `id="chart"`)
			So(w.Body.String(), ShouldContainSubstring, "/api/series")
		})

		Convey("Then unknown routes are 404", func() {
			So(do(mux, http.MethodGet, "/unknown").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then feed metadata is reported", func() {
			w := do(mux, http.MethodGet, "/api/feed")
			So(w.Code, ShouldEqual, http.StatusOK)
			info := decode[map[string]any](w)
			So(info["loaded"], ShouldEqual, true)
			So(info["station_count"], ShouldEqual, float64(3))
			So(info["default_year"], ShouldEqual, float64(2003))
		})

		Convey("Then the year axis is listed", func() {
			w := do(mux, http.MethodGet, "/api/years")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(strings.TrimSpace(w.Body.String()), ShouldEqual, `{"years":[1990,1999,2001,2005]}`)
		})

		Convey("Then wrong methods are rejected", func() {
			w := do(mux, http.MethodPost, "/api/years")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(w.Header().Get("Allow"), ShouldEqual, http.MethodGet)
			So(do(mux, http.MethodGet, "/api/feed/refresh").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestStationsEndpoints(t *testing.T) {
	Convey("Given an API server over a loaded service", t, func() {
		mux, _ := newMux()

		Convey("When listing stations without parameters", func() {
			w := do(mux, http.MethodGet, "/api/stations")
			page := decode[types.StationPage](w)

			Convey("Then the page is capped and classified at the default year", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(page.Matched, ShouldEqual, 3)
				So(page.Shown, ShouldEqual, 2)
				So(len(page.Rows), ShouldEqual, 2)
				So(*page.Rows[0].Active, ShouldBeTrue)  // AAA in 2003
				So(*page.Rows[1].Active, ShouldBeTrue)  // X01 in 2003
			})
		})

		Convey("When searching by country with a year and limit", func() {
			w := do(mux, http.MethodGet, "/api/stations?q=GHANA&scope=country&year=1995&limit=5")
			page := decode[types.StationPage](w)

			Convey("Then only Ghanaian stations are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(page.Matched, ShouldEqual, 2)
				So(page.Limit, ShouldEqual, 2)
				So(page.Scope, ShouldEqual, "country")
				So(page.Rows[0].ID, ShouldEqual, "X01")
				So(*page.Rows[0].Active, ShouldBeFalse)
				So(*page.Rows[1].Active, ShouldBeTrue)
			})
		})

		Convey("When parameters are malformed", func() {
			for _, target := range []string{
				"/api/stations?scope=planet",
				"/api/stations?year=soon",
				"/api/stations?limit=0",
				"/api/counts?year=1999.5",
				"/api/series?start=x",
				"/api/series?end=y",
				"/api/series?scope=everything",
			} {
				w := do(mux, http.MethodGet, target)
				body := decode[errorBody](w)

				Convey("Then "+target+" is a bad request", func() {
					So(w.Code, ShouldEqual, http.StatusBadRequest)
					So(body.Code, ShouldEqual, "bad_request")
				})
			}
		})

		Convey("When counting at a year", func() {
			w := do(mux, http.MethodGet, "/api/counts?year=2000")
			counts := decode[types.CountsResponse](w)

			Convey("Then the totals add up", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(counts.Year, ShouldEqual, 2000)
				So(counts.Active, ShouldEqual, 1)
				So(counts.Inactive, ShouldEqual, 2)
				So(counts.Total, ShouldEqual, 3)
			})
		})

		Convey("When requesting a series", func() {
			w := do(mux, http.MethodGet, "/api/series?start=1998&end=2002&q=gha")
			series := decode[types.SeriesResponse](w)

			Convey("Then one point per year is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(series.Start, ShouldEqual, 1998)
				So(series.End, ShouldEqual, 2002)
				So(len(series.Points), ShouldEqual, 5)
				So(series.Points[0], ShouldResemble, aggregate.Counts{Year: 1998, Active: 1, Inactive: 1, Total: 2})
				So(series.Points[4], ShouldResemble, aggregate.Counts{Year: 2002, Active: 1, Inactive: 1, Total: 2})
			})
		})

		Convey("When the series is too long", func() {
			w := do(mux, http.MethodGet, "/api/series?start=1900&end=2003")

			Convey("Then it is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode[errorBody](w).Message, ShouldContainSubstring, "series range too large")
			})
		})

		Convey("When the series bounds lie outside the year range", func() {
			w := do(mux, http.MethodGet, "/api/series?start=-4611686018427387914&end=4611686018427387913")

			Convey("Then the years are rejected before any work", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode[errorBody](w).Message, ShouldContainSubstring, "start must be an integer year")
			})
		})

		Convey("When the series spans the whole year range", func() {
			w := do(mux, http.MethodGet, "/api/series?start=-2147483648&end=2147483647")

			Convey("Then the range cap rejects it", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode[errorBody](w).Message, ShouldContainSubstring, "series range too large")
			})
		})
	})
}

type failingDeps struct {
	lastErr    string
	refreshErr error
	serviceErr error
}

func (f *failingDeps) FeedInfo(context.Context) types.FeedInfo {
	return types.FeedInfo{LastError: f.lastErr}
}

func (f *failingDeps) Refresh(context.Context) (types.FeedInfo, error) {
	return types.FeedInfo{LastError: f.lastErr}, f.refreshErr
}

func (f *failingDeps) Years(context.Context) ([]int, error) { return nil, f.serviceErr }

func (f *failingDeps) Stations(context.Context, types.StationQuery) (types.StationPage, error) {
	return types.StationPage{}, f.serviceErr
}

func (f *failingDeps) Counts(context.Context, types.StationQuery) (types.CountsResponse, error) {
	return types.CountsResponse{}, f.serviceErr
}

func (f *failingDeps) Series(context.Context, types.SeriesQuery) (types.SeriesResponse, error) {
	return types.SeriesResponse{}, f.serviceErr
}

func (f *failingDeps) GetStats() map[string]any { return map[string]any{} }

func TestErrorMapping(t *testing.T) {
	Convey("Given a service with no snapshot yet", t, func() {
		deps := &failingDeps{
			lastErr:    "dial tcp: connection refused",
			refreshErr: errors.New("dial tcp: connection refused"),
			serviceErr: fmt.Errorf("wrapped: %w", repository.ErrNotLoaded),
		}
		mux := http.NewServeMux()
		api.NewServer(deps).Register(context.Background(), mux)

		Convey("Then reads are 503 with the last fetch error", func() {
			for _, target := range []string{"/api/years", "/api/stations", "/api/counts", "/api/series"} {
				w := do(mux, http.MethodGet, target)
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				body := decode[errorBody](w)
				So(body.Code, ShouldEqual, "feed_unavailable")
				So(body.Message, ShouldContainSubstring, "connection refused")
			}
		})

		Convey("Then a manual refresh is a bad gateway", func() {
			w := do(mux, http.MethodPost, "/api/feed/refresh")
			So(w.Code, ShouldEqual, http.StatusBadGateway)
			So(decode[errorBody](w).Code, ShouldEqual, "refresh_failed")
		})
	})

	Convey("Given a feed without a required default year", t, func() {
		deps := &failingDeps{serviceErr: aggregate.ErrNoDefaultYear}
		mux := http.NewServeMux()
		api.NewServer(deps).Register(context.Background(), mux)

		Convey("Then counts are 503", func() {
			w := do(mux, http.MethodGet, "/api/counts")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})

	Convey("Given an unexpected service error", t, func() {
		deps := &failingDeps{serviceErr: errors.New("boom")}
		mux := http.NewServeMux()
		api.NewServer(deps).Register(context.Background(), mux)

		Convey("Then it is a 500", func() {
			w := do(mux, http.MethodGet, "/api/stations")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(decode[errorBody](w).Code, ShouldEqual, "internal_error")
		})
	})
}

func TestRateLimitedServer(t *testing.T) {
	Convey("Given a server limited to a burst of two", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		svc := service.New(service.WithFetcher(&staticFetcher{feed: demoFeed()}))
		_, err := svc.Refresh(ctx)
		So(err, ShouldBeNil)
		mux := http.NewServeMux()
		api.NewServer(svc, api.WithRateLimiter(api.NewRateLimiter(0.001, 2))).Register(ctx, mux)

		Convey("Then the third API call is throttled", func() {
			So(do(mux, http.MethodGet, "/api/years").Code, ShouldEqual, http.StatusOK)
			So(do(mux, http.MethodGet, "/api/years").Code, ShouldEqual, http.StatusOK)
			w := do(mux, http.MethodGet, "/api/years")
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			So(w.Header().Get("Retry-After"), ShouldNotBeEmpty)
			So(decode[errorBody](w).Code, ShouldEqual, "rate_limited")
		})

		Convey("Then non-API routes are not throttled", func() {
			for range 5 {
				So(do(mux, http.MethodGet, "/stats").Code, ShouldEqual, http.StatusOK)
			}
		})
	})
}
