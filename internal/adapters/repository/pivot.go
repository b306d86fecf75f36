package repository

import (
	"github.com/okian/tripmap/internal/domain/areametrics"
	"github.com/okian/tripmap/internal/domain/dataset"
	"github.com/okian/tripmap/internal/domain/model"
	"github.com/okian/tripmap/internal/domain/modes"
)

const (
	colValue = "value"
	colTotal = "_total"
	colModes = "_modes"
)

var longSchema = dataset.Schema{ //nolint:gochecknoglobals // fixed layout
	{Name: areametrics.ColumnAreaID, Kind: dataset.KindInt},
	{Name: "mode", Kind: dataset.KindString},
	{Name: colValue, Kind: dataset.KindFloat},
}

// PivotModeShares turns per-(area, mode) values into one row per area with a
// <mode> and <mode>_rel column for every registered mode. Relative shares are
// taken against the total of all modes in the area; synthetic modes sum their
// components. Areas keep the order of their first value.
func PivotModeShares(values []model.AreaModeValue, registry *modes.Registry) (*dataset.Dataset, error) {
	b := dataset.NewBuilder(longSchema)
	for _, v := range values {
		b.Append(dataset.Int(v.AreaID), dataset.String(v.Mode), dataset.Float(v.Value))
	}
	long, err := b.Build()
	if err != nil {
		return nil, err
	}

	byAreaMode, err := long.GroupBy(areametrics.ColumnAreaID, "mode")
	if err != nil {
		return nil, err
	}
	summed, err := byAreaMode.Rollup(dataset.Sum(colValue).As(colValue))
	if err != nil {
		return nil, err
	}
	byArea, err := summed.GroupBy(areametrics.ColumnAreaID)
	if err != nil {
		return nil, err
	}
	wide, err := byArea.Rollup(
		dataset.Sum(colValue).As(colTotal),
		dataset.ObjectAgg("mode", colValue).As(colModes),
	)
	if err != nil {
		return nil, err
	}

	columns := []string{areametrics.ColumnAreaID}
	for _, m := range registry.All() {
		parts := m.Components
		if !m.Synthetic() {
			parts = []string{m.Identifier}
		}
		abs := func(r dataset.Row) dataset.Value {
			byMode := r.Get(colModes).AsObject()
			var sum float64
			for _, p := range parts {
				sum += byMode[p]
			}
			return dataset.Float(sum)
		}
		rel := func(r dataset.Row) dataset.Value {
			total := r.Float(colTotal)
			if total == 0 {
				return dataset.Float(0)
			}
			return dataset.Float(abs(r).AsFloat() / total)
		}
		if wide, err = wide.Derive(dataset.Field{Name: m.Identifier, Kind: dataset.KindFloat}, abs); err != nil {
			return nil, err
		}
		relName := areametrics.RelColumn(m.Identifier)
		if wide, err = wide.Derive(dataset.Field{Name: relName, Kind: dataset.KindFloat}, rel); err != nil {
			return nil, err
		}
		columns = append(columns, m.Identifier, relName)
	}
	return wide.Select(columns...)
}
