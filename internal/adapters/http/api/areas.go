package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/tripmap/internal/domain/model"
	"github.com/okian/tripmap/internal/domain/modes"
)

var errMissingAreaType = errors.New("missing area_type")

// CatalogDependencies lists what the map can be switched between.
type CatalogDependencies interface {
	AreaTypes(ctx context.Context) ([]model.AreaType, error)
	Modes() []modes.Mode
}

type areaTypesResponse struct {
	AreaTypes []model.AreaType `json:"area_types"`
	Modes     []modes.Mode     `json:"modes"`
}

// AreaTypesHandler handles area type listing.
type AreaTypesHandler struct {
	deps CatalogDependencies
}

// NewAreaTypesHandler creates a new area types handler.
func NewAreaTypesHandler(deps CatalogDependencies) *AreaTypesHandler {
	return &AreaTypesHandler{deps: deps}
}

// HandleGetAreaTypes handles GET /area-types requests.
func (h *AreaTypesHandler) HandleGetAreaTypes(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_area_types"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	types, err := h.deps.AreaTypes(r.Context())
	if err != nil {
		writeFailure(w, r, Wrap(op, err))
		return
	}
	if types == nil {
		types = []model.AreaType{}
	}
	writeJSON(w, http.StatusOK, areaTypesResponse{AreaTypes: types, Modes: h.deps.Modes()})
}

// AreaDependencies resolves the areas of one area type.
type AreaDependencies interface {
	Areas(ctx context.Context, areaType string) ([]model.Area, error)
}

// AreasHandler handles area listing.
type AreasHandler struct {
	deps AreaDependencies
}

// NewAreasHandler creates a new areas handler.
func NewAreasHandler(deps AreaDependencies) *AreasHandler {
	return &AreasHandler{deps: deps}
}

// HandleGetAreas handles GET /areas?area_type= requests.
func (h *AreasHandler) HandleGetAreas(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_areas"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	areaType := r.URL.Query().Get(paramAreaType)
	if areaType == "" {
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errMissingAreaType))
		return
	}
	areas, err := h.deps.Areas(r.Context(), areaType)
	if err != nil {
		writeFailure(w, r, Wrap(op, err))
		return
	}
	if areas == nil {
		areas = []model.Area{}
	}
	writeJSON(w, http.StatusOK, areas)
}
