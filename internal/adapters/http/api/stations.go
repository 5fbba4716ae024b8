package api

import (
	"context"
	"net/http"

	"github.com/okian/stationlens/internal/domain/types"
)

// StationDependencies defines the derived station views.
type StationDependencies interface {
	Years(ctx context.Context) ([]int, error)
	Stations(ctx context.Context, q types.StationQuery) (types.StationPage, error)
	Counts(ctx context.Context, q types.StationQuery) (types.CountsResponse, error)
	Series(ctx context.Context, q types.SeriesQuery) (types.SeriesResponse, error)
}

// StationsHandler serves the year axis, station pages, counts and series.
type StationsHandler struct {
	deps StationDependencies
	feed FeedInfoProvider
}

// NewStationsHandler creates a new stations handler. feed, when non-nil,
// supplies the last fetch error for 503 responses.
func NewStationsHandler(deps StationDependencies, feed FeedInfoProvider) *StationsHandler {
	return &StationsHandler{deps: deps, feed: feed}
}

type yearsResponse struct {
	Years []int `json:"years"`
}

// HandleYears handles GET /api/years requests.
func (h *StationsHandler) HandleYears(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_years"
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	years, err := h.deps.Years(r.Context())
	if err != nil {
		writeServiceError(w, r, op, err, h.feed)
		return
	}
	writeJSON(w, http.StatusOK, yearsResponse{Years: years})
}

// HandleStations handles GET /api/stations?q=&scope=&year=&limit= requests.
func (h *StationsHandler) HandleStations(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_stations"
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	q, err := stationQuery(r, true)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, err))
		return
	}
	page, err := h.deps.Stations(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, op, err, h.feed)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleCounts handles GET /api/counts?q=&scope=&year= requests.
func (h *StationsHandler) HandleCounts(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_counts"
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	q, err := stationQuery(r, false)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, err))
		return
	}
	counts, err := h.deps.Counts(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, op, err, h.feed)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// HandleSeries handles GET /api/series?q=&scope=&start=&end= requests.
func (h *StationsHandler) HandleSeries(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_series"
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	values := r.URL.Query()
	scope, err := parseScope(values)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, err))
		return
	}
	start, err := parseYear(values, paramStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, err))
		return
	}
	end, err := parseYear(values, paramEnd)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, err))
		return
	}

	series, err := h.deps.Series(r.Context(), types.SeriesQuery{
		Text:  values.Get(paramQuery),
		Scope: scope,
		Start: start,
		End:   end,
	})
	if err != nil {
		writeServiceError(w, r, op, err, h.feed)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func stationQuery(r *http.Request, withLimit bool) (types.StationQuery, error) {
	values := r.URL.Query()
	scope, err := parseScope(values)
	if err != nil {
		return types.StationQuery{}, err
	}
	year, err := parseYear(values, paramYear)
	if err != nil {
		return types.StationQuery{}, err
	}
	q := types.StationQuery{
		Text:  values.Get(paramQuery),
		Scope: scope,
		Year:  year,
	}
	if withLimit {
		if q.Limit, err = parseLimit(values); err != nil {
			return types.StationQuery{}, err
		}
	}
	return q, nil
}
