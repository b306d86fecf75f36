// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/tripmap/internal/adapters/mq/queue"
	"github.com/okian/tripmap/internal/adapters/repository"
	service "github.com/okian/tripmap/internal/app"
	"github.com/okian/tripmap/internal/domain/model"
	"github.com/okian/tripmap/internal/domain/modes"
	"github.com/okian/tripmap/pkg/logger"
)

// AreaMetrics mirrors the choropleth payload returned by the service.
type AreaMetrics = service.AreaMetrics

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	AreaTypes(ctx context.Context) ([]model.AreaType, error)
	Areas(ctx context.Context, areaType string) ([]model.Area, error)
	Modes() []modes.Mode

	AreaMetrics(ctx context.Context, sel model.Selection) (AreaMetrics, error)
	PoiAggregate(ctx context.Context, sel model.Selection, poi int64, topN int) (model.PoiAggregate, error)

	// Warm queues POI precomputation and returns the number of jobs accepted.
	Warm(ctx context.Context, sel model.Selection) (int, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	areaTypesHandler   *AreaTypesHandler
	areasHandler       *AreasHandler
	areaMetricsHandler *AreaMetricsHandler
	poiHandler         *PoiHandler
	warmupHandler      *WarmupHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		areaTypesHandler:   NewAreaTypesHandler(deps),
		areasHandler:       NewAreasHandler(deps),
		areaMetricsHandler: NewAreaMetricsHandler(deps),
		poiHandler:         NewPoiHandler(deps),
		warmupHandler:      NewWarmupHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(path, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(path, RequestIDMiddleware(MetricsMiddleware(h, endpoint)))
	}
	route("/healthz", "healthz", s.healthHandler.HandleHealth)
	route("/stats", "stats", s.statsHandler.HandleStats)
	route("/area-types", "area_types", s.areaTypesHandler.HandleGetAreaTypes)
	route("/areas", "areas", s.areasHandler.HandleGetAreas)
	route("/area-metrics", "area_metrics", s.areaMetricsHandler.HandleGetAreaMetrics)
	route("/pois/", "pois", s.poiHandler.HandleGetPoi)
	route("/warmup", "warmup", s.warmupHandler.HandlePostWarmup)
}

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	id := RequestID(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Get().Named("api").Error(r.Context(), "request failed",
			logger.String("request_id", id),
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg, RequestID: id})
}

// writeFailure maps an upstream error onto its HTTP status.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, repository.ErrInvalidSelection):
		writeError(w, r, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrBackpressure), errors.Is(err, queue.ErrFull):
		writeError(w, r, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, queue.ErrClosed), errors.Is(err, service.ErrNotStarted):
		writeError(w, r, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, r, http.StatusInternalServerError, "internal_error", err)
	}
}
