package api

import (
	"context"
	"net/http"

	"github.com/okian/tripmap/internal/domain/model"
)

// AreaMetricsDependencies projects a selection onto the map.
type AreaMetricsDependencies interface {
	AreaMetrics(ctx context.Context, sel model.Selection) (AreaMetrics, error)
}

// AreaMetricsHandler handles choropleth requests.
type AreaMetricsHandler struct {
	deps AreaMetricsDependencies
}

// NewAreaMetricsHandler creates a new area metrics handler.
func NewAreaMetricsHandler(deps AreaMetricsDependencies) *AreaMetricsHandler {
	return &AreaMetricsHandler{deps: deps}
}

// HandleGetAreaMetrics handles GET /area-metrics requests. A selection
// without data answers 200 with status no_data.
func (h *AreaMetricsHandler) HandleGetAreaMetrics(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_area_metrics"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	sel, err := parseSelection(r)
	if err != nil {
		writeFailure(w, r, Wrap(op, err))
		return
	}
	res, err := h.deps.AreaMetrics(r.Context(), sel)
	if err != nil {
		writeFailure(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
