package synth

import (
	"time"

	"github.com/okian/tripmap/internal/domain/model"
)

// Identifiers of the generated area types.
const (
	DistrictType = "tre:tilastoalue"
	POIType      = "tre:poi"
)

// Config holds configuration for a synthetic survey.
type Config struct {
	DBPath    string    // SQLite database file
	Districts int       // Number of districts
	POIs      int       // Number of points of interest
	Start     time.Time // First survey day
	Days      int       // Number of survey days
	Seed      int64     // Random seed; equal seeds give equal surveys
	Workers   int       // Number of concurrent day generators
	BatchSize int       // Rows per insert statement batch
	Verbose   bool      // Enable verbose logging
}

// DefaultConfig returns a two-week survey of a mid-sized city.
func DefaultConfig() Config {
	start, _ := time.Parse(model.DateLayout, "2023-05-01")
	return Config{
		DBPath:    "tripmap.db",
		Districts: 24,
		POIs:      6,
		Start:     start,
		Days:      14,
		Seed:      1,
		Workers:   4,
		BatchSize: 500,
	}
}

// Stats holds seeding statistics.
type Stats struct {
	Batch     string
	AreaTypes int
	Areas     int
	ModeStats int
	PoiTrips  int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
