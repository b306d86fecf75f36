// Package areametrics turns a pivoted per-area mode table into choropleth
// metrics: absolute value, relative share, colour bucket and elevation.
package areametrics

import (
	"fmt"
	"math"

	"github.com/okian/tripmap/internal/domain/classify"
	"github.com/okian/tripmap/internal/domain/dataset"
	"github.com/okian/tripmap/internal/domain/model"
)

// ColumnAreaID is the area key column of the input table.
const ColumnAreaID = "area_id"

// RelSuffix is appended to a mode identifier to name its relative share column.
const RelSuffix = "_rel"

const (
	defaultClasses   = 7
	defaultThreshold = 100
)

// RelColumn returns the relative share column name of a mode.
func RelColumn(mode string) string { return mode + RelSuffix }

// Projector computes AreaMetrics for one mode at a time. It holds only
// configuration and is safe for concurrent use.
type Projector struct {
	classes   int
	threshold float64
	synthetic []string
}

// NewProjector creates a projector with seven classes and a visibility threshold of 100.
func NewProjector(opts ...Option) *Projector {
	p := &Projector{classes: defaultClasses, threshold: defaultThreshold}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Classes returns the configured class count.
func (p *Projector) Classes() int { return p.classes }

// Projection is the outcome of projecting one mode.
type Projection struct {
	Mode    string                     `json:"mode"`
	Metrics map[int64]model.AreaMetric `json:"metrics"`
	Breaks  classify.Breaks            `json:"breaks"`
	// Limits is min, breaks, max of the relative shares, for the legend.
	Limits []float64 `json:"limits"`
	Min    float64   `json:"min"`
	Max    float64   `json:"max"`
}

// Project computes per-area metrics for mode. The input has one row per area
// with an area_id column plus a <mode> and <mode>_rel column per mode.
// rangeDays scales the daily average; zero leaves it unset.
func (p *Projector) Project(data *dataset.Dataset, mode string, rangeDays int) (Projection, error) {
	rel := RelColumn(mode)
	found := data.ColumnNames(func(name string) bool { return name == mode || name == rel })
	if len(found) != 2 {
		return Projection{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	if !data.Has(ColumnAreaID) {
		return Projection{}, fmt.Errorf("%w: missing %q column", dataset.ErrSchema, ColumnAreaID)
	}

	abs, err := data.Floats(mode)
	if err != nil {
		return Projection{}, err
	}
	if len(abs) == 0 {
		return Projection{}, fmt.Errorf("%w: no areas for mode %q", ErrInsufficientData, mode)
	}
	lo, hi := abs[0], abs[0]
	for _, v := range abs[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	shares, err := data.Floats(rel)
	if err != nil {
		return Projection{}, err
	}
	breaks, err := classify.ComputeBreaks(shares, p.classes)
	if err != nil {
		return Projection{}, err
	}
	limits, err := classify.Limits(shares, p.classes)
	if err != nil {
		return Projection{}, err
	}

	synthetic := make([]string, 0, len(p.synthetic))
	for _, s := range p.synthetic {
		if s != mode && data.Has(RelColumn(s)) {
			synthetic = append(synthetic, s)
		}
	}

	metrics := make(map[int64]model.AreaMetric, data.Len())
	for _, row := range data.Rows() {
		id := row.Get(ColumnAreaID)
		if id.IsNull() {
			continue
		}
		v := row.Float(mode)
		m := model.AreaMetric{
			AreaID:        id.AsInt(),
			AbsoluteValue: v,
			RelativeShare: row.Float(rel),
		}
		if rangeDays > 0 {
			m.DailyAverage = v / float64(rangeDays)
		}
		if len(synthetic) > 0 {
			m.SyntheticShares = make(map[string]float64, len(synthetic))
			for _, s := range synthetic {
				m.SyntheticShares[s] = row.Float(RelColumn(s))
			}
		}
		if math.Abs(v) < p.threshold {
			m.ColorBucket = model.NoDataBucket
			m.Transparent = true
		} else {
			m.ColorBucket = classify.Classify(m.RelativeShare, breaks)
			m.Elevation = elevation(v, lo, hi)
		}
		metrics[m.AreaID] = m
	}

	return Projection{
		Mode:    mode,
		Metrics: metrics,
		Breaks:  breaks,
		Limits:  limits,
		Min:     lo,
		Max:     hi,
	}, nil
}

func elevation(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return (v - lo) / (hi - lo)
}
