// Package repository is the raw trip-record source: SQLite storage of daily
// survey statistics and the pivot that feeds area projections.
package repository

import (
	"context"
	"time"

	"github.com/okian/tripmap/internal/domain/model"
)

// ModeStat is one day of trips for one area and mode.
type ModeStat struct {
	AreaTypeID int64
	AreaID     int64
	Date       time.Time
	Mode       string
	Trips      float64
	Length     float64
}

// PoiTrip is one day of trips between an area and a POI.
type PoiTrip struct {
	AreaTypeID int64
	AreaID     int64
	POIID      int64
	Date       time.Time
	Mode       string
	IsInbound  bool
	Trips      float64
	Length     float64
}

// Reader provides read access to areas and trip statistics.
type Reader interface {
	// AreaTypes lists every area type ordered by id.
	AreaTypes(ctx context.Context) ([]model.AreaType, error)
	// AreaType returns the area type with the given identifier or ErrNotFound.
	AreaType(ctx context.Context, identifier string) (model.AreaType, error)
	// Areas lists the areas of one type ordered by id.
	Areas(ctx context.Context, areaTypeID int64) ([]model.Area, error)
	// Area returns one area by id or ErrNotFound.
	Area(ctx context.Context, id int64) (model.Area, error)

	// ModeValues sums the selected quantity per area and mode.
	ModeValues(ctx context.Context, sel model.Selection, areaTypeID int64) ([]model.AreaModeValue, error)
	// PoiTrips returns the trips between areas of one type and a POI,
	// summed per (area, mode, direction).
	PoiTrips(ctx context.Context, sel model.Selection, areaTypeID, poiID int64) ([]model.TripRecord, error)
}

// Writer loads survey data.
type Writer interface {
	Migrate(ctx context.Context) error
	InsertAreaType(ctx context.Context, at model.AreaType) (int64, error)
	InsertArea(ctx context.Context, a model.Area) (int64, error)
	InsertModeStats(ctx context.Context, stats []ModeStat) error
	InsertPoiTrips(ctx context.Context, trips []PoiTrip) error
}

// Store is the full repository surface.
type Store interface {
	Reader
	Writer
	Close() error
}
