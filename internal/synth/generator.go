// Package synth generates deterministic synthetic travel-survey data and
// seeds it into a trip-record store.
package synth

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/okian/tripmap/internal/adapters/repository"
	"github.com/okian/tripmap/internal/domain/model"
)

// Area type ids; area ids number districts first, then POIs.
const (
	districtTypeID int64 = 1
	poiTypeID      int64 = 2
)

// Daily volume and trip length parameters.
const (
	baseDailyTrips   = 400.0
	weekendFactor    = 0.6
	poiShare         = 0.05
	maxPoiCounterpts = 8
	inboundBias      = 0.55
)

// modeProfile is the share and mean trip length (km) of one real mode.
type modeProfile struct {
	mode   string
	share  float64
	meanKm float64
}

var profiles = []modeProfile{ //nolint:gochecknoglobals // fixed survey profile
	{"car", 0.45, 12},
	{"bicycle", 0.08, 4},
	{"walk", 0.15, 1.2},
	{"bus", 0.14, 6},
	{"tram", 0.08, 5},
	{"train", 0.04, 30},
	{"other", 0.06, 8},
}

var districtNames = []string{ //nolint:gochecknoglobals // display names
	"Keskusta", "Hervanta", "Kaleva", "Tesoma", "Lielahti", "Hatanpää",
	"Pispala", "Amuri", "Tammela", "Linnainmaa", "Vuores", "Lentävänniemi",
}

var poiNames = []string{ //nolint:gochecknoglobals // display names
	"Stadium", "Central Station", "University", "Hospital", "Airport", "Market Hall",
}

// Survey is one generated dataset.
type Survey struct {
	AreaTypes []model.AreaType
	Areas     []model.Area
}

// Day is the generated statistics of one survey day.
type Day struct {
	Date      time.Time
	ModeStats []repository.ModeStat
	PoiTrips  []repository.PoiTrip
}

// NewSurvey lays out the area types and areas of cfg.
func NewSurvey(cfg Config) Survey {
	s := Survey{
		AreaTypes: []model.AreaType{
			{ID: districtTypeID, Identifier: DistrictType, Name: "Statistical districts"},
			{ID: poiTypeID, Identifier: POIType, Name: "Points of interest", IsPOI: true},
		},
	}
	for i := 0; i < cfg.Districts; i++ {
		s.Areas = append(s.Areas, model.Area{
			ID:         int64(i + 1),
			AreaTypeID: districtTypeID,
			Identifier: fmt.Sprintf("d%02d", i+1),
			Name:       pickName(districtNames, i, "District"),
		})
	}
	for i := 0; i < cfg.POIs; i++ {
		s.Areas = append(s.Areas, model.Area{
			ID:         int64(cfg.Districts + i + 1),
			AreaTypeID: poiTypeID,
			Identifier: fmt.Sprintf("p%02d", i+1),
			Name:       pickName(poiNames, i, "POI"),
		})
	}
	return s
}

func pickName(names []string, i int, prefix string) string {
	if i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("%s %d", prefix, i+1)
}

// districts returns the district areas of s.
func (s Survey) districts() []model.Area {
	out := make([]model.Area, 0, len(s.Areas))
	for _, a := range s.Areas {
		if a.AreaTypeID == districtTypeID {
			out = append(out, a)
		}
	}
	return out
}

// pois returns the POI areas of s.
func (s Survey) pois() []model.Area {
	out := make([]model.Area, 0)
	for _, a := range s.Areas {
		if a.AreaTypeID == poiTypeID {
			out = append(out, a)
		}
	}
	return out
}

// GenerateDay builds the statistics of day index d. The result depends only
// on the survey, the seed and d, so days can be generated in any order.
func GenerateDay(s Survey, seed int64, start time.Time, d int) Day {
	rng := rand.New(rand.NewSource(seed*1_000_003 + int64(d))) //nolint:gosec // reproducible test data
	date := start.AddDate(0, 0, d)
	volume := baseDailyTrips
	if !model.WeekWorkday.Includes(date.Weekday()) {
		volume *= weekendFactor
	}

	day := Day{Date: date}
	districts := s.districts()
	for i, area := range districts {
		// Central districts are busier and walk more.
		centrality := 1 / (1 + float64(i)/4)
		for _, p := range profiles {
			share := p.share
			if p.mode == "walk" || p.mode == "bicycle" {
				share *= 0.5 + centrality
			}
			trips := math.Round(volume * centrality * share * (0.8 + 0.4*rng.Float64()))
			if trips == 0 {
				continue
			}
			day.ModeStats = append(day.ModeStats, repository.ModeStat{
				AreaTypeID: districtTypeID,
				AreaID:     area.ID,
				Date:       date,
				Mode:       p.mode,
				Trips:      trips,
				Length:     math.Round(trips*p.meanKm*(0.7+0.6*rng.Float64())*10) / 10,
			})
		}
	}

	for _, poi := range s.pois() {
		n := min(len(districts), maxPoiCounterpts)
		for _, k := range rng.Perm(len(districts))[:n] {
			area := districts[k]
			for _, p := range profiles {
				if rng.Float64() > p.share*3 {
					continue
				}
				total := math.Round(volume * poiShare * p.share * (0.5 + rng.Float64()) * 10)
				if total == 0 {
					continue
				}
				inbound := math.Round(total * inboundBias)
				for _, dir := range []struct {
					inbound bool
					trips   float64
				}{{true, inbound}, {false, total - inbound}} {
					if dir.trips == 0 {
						continue
					}
					day.PoiTrips = append(day.PoiTrips, repository.PoiTrip{
						AreaTypeID: districtTypeID,
						AreaID:     area.ID,
						POIID:      poi.ID,
						Date:       date,
						Mode:       p.mode,
						IsInbound:  dir.inbound,
						Trips:      dir.trips,
						Length:     math.Round(dir.trips*p.meanKm*10) / 10,
					})
				}
			}
		}
	}
	return day
}
