package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/tripmap/internal/domain/model"
)

var errInvalidPOI = errors.New("poi id must be an integer")

// PoiDependencies defines the interface for POI aggregation.
type PoiDependencies interface {
	PoiAggregate(ctx context.Context, sel model.Selection, poi int64, topN int) (model.PoiAggregate, error)
}

// PoiHandler handles POI popup requests.
type PoiHandler struct {
	deps PoiDependencies
}

// NewPoiHandler creates a new POI handler.
func NewPoiHandler(deps PoiDependencies) *PoiHandler {
	return &PoiHandler{deps: deps}
}

type poiResponse struct {
	model.PoiAggregate
	Total float64 `json:"total"`
}

// HandleGetPoi handles GET /pois/{id} requests.
func (h *PoiHandler) HandleGetPoi(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_poi"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /pois/
	path := strings.TrimPrefix(r.URL.Path, "/pois/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, r, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	poi, err := strconv.ParseInt(path, 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errInvalidPOI))
		return
	}
	sel, err := parseSelection(r)
	if err != nil {
		writeFailure(w, r, Wrap(op, err))
		return
	}
	top, err := parseTop(r)
	if err != nil {
		writeFailure(w, r, Wrap(op, err))
		return
	}

	agg, err := h.deps.PoiAggregate(r.Context(), sel, poi, top)
	if err != nil {
		writeFailure(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, poiResponse{PoiAggregate: agg, Total: agg.Total()})
}
