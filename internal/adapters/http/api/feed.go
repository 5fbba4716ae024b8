package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/stationlens/internal/adapters/repository"
	"github.com/okian/stationlens/internal/domain/aggregate"
	"github.com/okian/stationlens/internal/domain/types"
)

// FeedInfoProvider describes the loaded feed.
type FeedInfoProvider interface {
	FeedInfo(ctx context.Context) types.FeedInfo
}

// FeedDependencies defines the feed inspection and reload operations.
type FeedDependencies interface {
	FeedInfoProvider
	Refresh(ctx context.Context) (types.FeedInfo, error)
}

// FeedHandler handles feed metadata and refresh requests.
type FeedHandler struct {
	deps FeedDependencies
}

// NewFeedHandler creates a new feed handler.
func NewFeedHandler(deps FeedDependencies) *FeedHandler {
	return &FeedHandler{deps: deps}
}

// HandleGetFeed handles GET /api/feed requests.
func (h *FeedHandler) HandleGetFeed(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.FeedInfo(r.Context()))
}

// HandleRefresh handles POST /api/feed/refresh requests.
func (h *FeedHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.refresh_feed"
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	info, err := h.deps.Refresh(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, codeRefreshFailed, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// writeServiceError maps errors returned by the station service to responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error, feed FeedInfoProvider) {
	switch {
	case errors.Is(err, repository.ErrNotLoaded):
		cause := err
		if feed != nil {
			if last := feed.FeedInfo(r.Context()).LastError; last != "" {
				cause = fmt.Errorf("%w: %s", err, last)
			}
		}
		writeError(w, http.StatusServiceUnavailable, codeUnavailable, WrapKind(op, ErrUnavailable, cause))
	case errors.Is(err, aggregate.ErrNoDefaultYear):
		writeError(w, http.StatusServiceUnavailable, codeUnavailable, WrapKind(op, ErrUnavailable, err))
	case errors.Is(err, aggregate.ErrRangeTooLarge):
		writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, err))
	default:
		writeError(w, http.StatusInternalServerError, codeInternal, Wrap(op, err))
	}
}
