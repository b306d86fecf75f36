// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used in selections and storage.
const DateLayout = "2006-01-02"

// NoDataBucket is the colour bucket of an area below the visibility threshold.
const NoDataBucket = -1

// Quantity selects which measure is aggregated.
type Quantity string

const (
	QuantityTrips   Quantity = "trips"
	QuantityLengths Quantity = "lengths"
)

// Valid reports whether q is a known quantity.
func (q Quantity) Valid() bool { return q == QuantityTrips || q == QuantityLengths }

// WeekSubset restricts a selection to weekend or workday dates.
type WeekSubset uint8

const (
	WeekAll WeekSubset = iota
	WeekWeekend
	WeekWorkday
)

func (w WeekSubset) String() string {
	switch w {
	case WeekWeekend:
		return "weekend"
	case WeekWorkday:
		return "workday"
	default:
		return ""
	}
}

// ParseWeekSubset parses "weekend", "workday" or "" (all days).
func ParseWeekSubset(s string) (WeekSubset, error) {
	switch s {
	case "":
		return WeekAll, nil
	case "weekend":
		return WeekWeekend, nil
	case "workday":
		return WeekWorkday, nil
	}
	return WeekAll, fmt.Errorf("unknown week subset %q", s)
}

// Includes reports whether the given weekday belongs to the subset.
func (w WeekSubset) Includes(d time.Weekday) bool {
	weekend := d == time.Saturday || d == time.Sunday
	switch w {
	case WeekWeekend:
		return weekend
	case WeekWorkday:
		return !weekend
	default:
		return true
	}
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of days in the range, counting both ends.
// An inverted range has zero days.
func (r DateRange) Days() int {
	start := truncateDay(r.Start)
	end := truncateDay(r.End).AddDate(0, 0, 1)
	if !end.After(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24 + 0.5)
}

// Valid reports whether both ends are set and start is not after end.
func (r DateRange) Valid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && !truncateDay(r.Start).After(truncateDay(r.End))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Selection is the read-only parameter bundle a user picks in the UI.
type Selection struct {
	AreaType   string
	Mode       string
	Quantity   Quantity
	WeekSubset WeekSubset
	Range      DateRange
}

// Key identifies the selection for memoization.
func (s Selection) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s",
		s.AreaType, s.Mode, s.Quantity, s.WeekSubset,
		s.Range.Start.Format(DateLayout), s.Range.End.Format(DateLayout))
}

// TripRecord is one observation of trips between an area and a POI.
type TripRecord struct {
	AreaID    int64
	POIID     *int64 // nil when the record is not tied to a POI
	Mode      string
	IsInbound bool
	Trips     float64
	Length    float64
}

// AreaModeValue is the summed quantity of one mode in one area.
type AreaModeValue struct {
	AreaID int64
	Mode   string
	Value  float64
}

// AreaType is a family of areas, e.g. statistical districts or POIs.
type AreaType struct {
	ID         int64  `json:"id"`
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
	IsPOI      bool   `json:"is_poi"`
}

// Area is a geographic region with display metadata.
type Area struct {
	ID         int64  `json:"id"`
	AreaTypeID int64  `json:"area_type_id"`
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
}

// AreaMetric is the per-area choropleth value for one mode.
type AreaMetric struct {
	AreaID        int64   `json:"area_id"`
	AbsoluteValue float64 `json:"absolute_value"`
	RelativeShare float64 `json:"relative_share"`
	// ColorBucket is 0..k-1, or NoDataBucket below the visibility threshold.
	ColorBucket  int     `json:"color_bucket"`
	Transparent  bool    `json:"transparent"`
	Elevation    float64 `json:"elevation"`
	DailyAverage float64 `json:"daily_average"`
	// SyntheticShares holds the relative shares of synthetic modes.
	SyntheticShares map[string]float64 `json:"synthetic_shares,omitempty"`
}

// NoData reports whether the area was below the visibility threshold.
func (m AreaMetric) NoData() bool { return m.ColorBucket == NoDataBucket }

// Direction is the trip direction relative to a POI.
type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

// DirectionOf maps the isInbound flag to a Direction.
func DirectionOf(inbound bool) Direction {
	if inbound {
		return Inbound
	}
	return Outbound
}

// ModeTrips is one entry of a breakdown.
type ModeTrips struct {
	Mode  string  `json:"mode"`
	Trips float64 `json:"trips"`
}

// Breakdown is a mode to trips mapping kept in canonical mode order.
type Breakdown []ModeTrips

// Map returns the breakdown as a plain map.
func (b Breakdown) Map() map[string]float64 {
	m := make(map[string]float64, len(b))
	for _, e := range b {
		m[e.Mode] = e.Trips
	}
	return m
}

// Modes returns the mode identifiers in order.
func (b Breakdown) Modes() []string {
	out := make([]string, len(b))
	for i, e := range b {
		out[i] = e.Mode
	}
	return out
}

// RankedCounterpart is one row of a POI top-N ranking.
type RankedCounterpart struct {
	AreaID        int64     `json:"area_id"`
	Direction     Direction `json:"direction"`
	TotalTrips    float64   `json:"total_trips"`
	ModeBreakdown Breakdown `json:"mode_breakdown"`
	// Name and Identifier are empty when the area is unknown to the lookup table.
	Name       string `json:"name,omitempty"`
	Identifier string `json:"identifier,omitempty"`
	// Share is TotalTrips relative to the leading counterpart.
	Share float64 `json:"share"`
}

// PoiAggregate summarizes the trips into and out of one POI.
type PoiAggregate struct {
	POI               int64               `json:"poi"`
	Name              string              `json:"name,omitempty"`
	InboundTotal      float64             `json:"inbound_total"`
	OutboundTotal     float64             `json:"outbound_total"`
	InboundAvgLength  float64             `json:"inbound_avg_length"`
	OutboundAvgLength float64             `json:"outbound_avg_length"`
	TopInbound        []RankedCounterpart `json:"top_inbound"`
	TopOutbound       []RankedCounterpart `json:"top_outbound"`
}

// Total is the combined inbound and outbound trip count.
func (p PoiAggregate) Total() float64 { return p.InboundTotal + p.OutboundTotal }
