// Package poirank ranks the origin and destination areas of a point of
// interest and summarizes its inbound and outbound traffic.
package poirank

import (
	"fmt"
	"slices"

	"github.com/okian/tripmap/internal/domain/dataset"
	"github.com/okian/tripmap/internal/domain/model"
)

const (
	defaultTopN = 5

	paramPOI      = "poi"
	colTotalTrips = "total_trips"
	colBreakdown  = "breakdown"
	colSumLength  = "sum_length"
)

// byPOI keeps the records of the POI bound as the "poi" parameter.
func byPOI(r dataset.Row, p dataset.Params) bool {
	return r.Get(ColPOIID).Equal(p.Get(paramPOI))
}

// Engine computes PoiAggregates. It holds only configuration and is safe for
// concurrent use.
type Engine struct {
	topN int
}

// NewEngine creates an engine keeping the top 5 counterparts by default.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{topN: defaultTopN}
	for _, opt := range opts {
		opt(e)
	}
	if e.topN < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTopN, e.topN)
	}
	return e, nil
}

// TopN returns the configured ranking size.
func (e *Engine) TopN() int { return e.topN }

// Request is the input of one ranking.
type Request struct {
	// Records holds trip records in RecordSchema layout; only rows of POI are used.
	Records *dataset.Dataset
	POI     int64
	// ModeOrder is the canonical breakdown order. Modes missing from it
	// follow in alphabetical order.
	ModeOrder []string
	// RangeDays normalizes the average lengths; zero leaves them at zero.
	RangeDays int
	// Areas is an optional lookup table in AreaSchema layout.
	Areas *dataset.Dataset
}

// Rank builds the PoiAggregate for req.POI. A POI without records, or a
// request without a record set, yields zero totals and empty rankings.
func (e *Engine) Rank(req Request) (model.PoiAggregate, error) {
	out := model.PoiAggregate{
		POI:         req.POI,
		TopInbound:  []model.RankedCounterpart{},
		TopOutbound: []model.RankedCounterpart{},
	}
	source := req.Records
	if source == nil {
		empty, err := dataset.New(RecordSchema)
		if err != nil {
			return out, err
		}
		source = empty
	}
	records, err := source.Select(ColAreaID, ColPOIID, ColMode, ColIsInbound, ColTrips, ColLength)
	if err != nil {
		return out, err
	}
	trips := records.Params(dataset.Params{paramPOI: dataset.Int(req.POI)}).Filter(byPOI)

	if err := e.totals(trips, req.RangeDays, &out); err != nil {
		return out, err
	}

	top, err := e.top(trips, req.Areas)
	if err != nil {
		return out, err
	}
	order := modeOrder(req.ModeOrder)
	for _, row := range top.Rows() {
		c := model.RankedCounterpart{
			AreaID:        row.Int(ColAreaID),
			Direction:     model.DirectionOf(row.Bool(ColIsInbound)),
			TotalTrips:    row.Float(colTotalTrips),
			ModeBreakdown: breakdown(row.Get(colBreakdown).AsObject(), order),
			Name:          row.Str(ColName),
			Identifier:    row.Str(ColIdentifier),
		}
		if c.Direction == model.Inbound {
			out.TopInbound = append(out.TopInbound, c)
		} else {
			out.TopOutbound = append(out.TopOutbound, c)
		}
	}
	scale(out.TopInbound)
	scale(out.TopOutbound)
	return out, nil
}

// totals sums trips and length per direction over the whole record set.
func (e *Engine) totals(trips *dataset.Dataset, days int, out *model.PoiAggregate) error {
	byDir, err := trips.GroupBy(ColIsInbound)
	if err != nil {
		return err
	}
	sums, err := byDir.Rollup(dataset.Sum(ColTrips), dataset.Sum(ColLength))
	if err != nil {
		return err
	}
	for _, row := range sums.Rows() {
		total := row.Float("sum_" + ColTrips)
		avg := 0.0
		if days > 0 {
			avg = row.Float(colSumLength) / float64(days)
		}
		if row.Bool(ColIsInbound) {
			out.InboundTotal, out.InboundAvgLength = total, avg
		} else {
			out.OutboundTotal, out.OutboundAvgLength = total, avg
		}
	}
	return nil
}

// top ranks counterpart areas per direction and keeps the first N of each.
func (e *Engine) top(trips *dataset.Dataset, areas *dataset.Dataset) (*dataset.Dataset, error) {
	// Sum repeated (area, mode) pairs first so the breakdown never drops trips.
	perMode, err := trips.GroupBy(ColIsInbound, ColAreaID, ColMode)
	if err != nil {
		return nil, err
	}
	modeSums, err := perMode.Rollup(dataset.Sum(ColTrips).As(ColTrips))
	if err != nil {
		return nil, err
	}
	perArea, err := modeSums.GroupBy(ColIsInbound, ColAreaID)
	if err != nil {
		return nil, err
	}
	ranked, err := perArea.Rollup(
		dataset.Sum(ColTrips).As(colTotalTrips),
		dataset.ObjectAgg(ColMode, ColTrips).As(colBreakdown),
	)
	if err != nil {
		return nil, err
	}
	ranked, err = ranked.OrderBy(colTotalTrips, dataset.Desc)
	if err != nil {
		return nil, err
	}
	byDir, err := ranked.GroupBy(ColIsInbound)
	if err != nil {
		return nil, err
	}
	top := byDir.Slice(0, e.topN).Ungroup()

	if areas == nil {
		return top, nil
	}
	return top.Lookup(areas, ColAreaID, ColID, ColName, ColIdentifier)
}

// modeOrder indexes the canonical mode order.
func modeOrder(order []string) map[string]int {
	idx := make(map[string]int, len(order))
	for i, m := range order {
		if _, ok := idx[m]; !ok {
			idx[m] = i
		}
	}
	return idx
}

// breakdown lays out per-mode trips in canonical order, unknown modes last
// in alphabetical order.
func breakdown(m map[string]float64, order map[string]int) model.Breakdown {
	modes := make([]string, 0, len(m))
	for k := range m {
		modes = append(modes, k)
	}
	slices.SortFunc(modes, func(a, b string) int {
		ia, oka := order[a]
		ib, okb := order[b]
		switch {
		case oka && okb:
			return ia - ib
		case oka:
			return -1
		case okb:
			return 1
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	out := make(model.Breakdown, len(modes))
	for i, k := range modes {
		out[i] = model.ModeTrips{Mode: k, Trips: m[k]}
	}
	return out
}

// scale sets every share relative to the leading counterpart.
func scale(ranked []model.RankedCounterpart) {
	if len(ranked) == 0 || ranked[0].TotalTrips <= 0 {
		return
	}
	lead := ranked[0].TotalTrips
	for i := range ranked {
		ranked[i].Share = ranked[i].TotalTrips / lead
	}
}
