package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/tripmap/internal/adapters/mq/queue"
	"github.com/okian/tripmap/internal/domain/model"
)

// WarmupDependencies queues background precomputation.
type WarmupDependencies interface {
	Warm(ctx context.Context, sel model.Selection) (int, error)
}

// WarmupHandler handles warmup requests.
type WarmupHandler struct {
	deps WarmupDependencies
}

// NewWarmupHandler creates a new warmup handler.
func NewWarmupHandler(deps WarmupDependencies) *WarmupHandler {
	return &WarmupHandler{deps: deps}
}

type warmupResponse struct {
	Status string `json:"status"`
	Jobs   int    `json:"jobs"`
}

// HandlePostWarmup handles POST /warmup requests.
func (h *WarmupHandler) HandlePostWarmup(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_warmup"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	sel, err := parseSelection(r)
	if err != nil {
		writeFailure(w, r, Wrap(op, err))
		return
	}
	n, err := h.deps.Warm(r.Context(), sel)
	if errors.Is(err, queue.ErrFull) {
		writeFailure(w, r, WrapKind(op, ErrBackpressure, err))
		return
	}
	if err != nil {
		writeFailure(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, warmupResponse{Status: "accepted", Jobs: n})
}
