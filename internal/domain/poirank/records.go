package poirank

import (
	"github.com/okian/tripmap/internal/domain/dataset"
	"github.com/okian/tripmap/internal/domain/model"
)

// Trip record columns.
const (
	ColAreaID    = "area_id"
	ColPOIID     = "poi_id"
	ColMode      = "mode"
	ColIsInbound = "is_inbound"
	ColTrips     = "trips"
	ColLength    = "length"
)

// Area lookup columns.
const (
	ColID         = "id"
	ColName       = "name"
	ColIdentifier = "identifier"
)

// RecordSchema is the column layout of a trip record dataset.
var RecordSchema = dataset.Schema{
	{Name: ColAreaID, Kind: dataset.KindInt},
	{Name: ColPOIID, Kind: dataset.KindInt},
	{Name: ColMode, Kind: dataset.KindString},
	{Name: ColIsInbound, Kind: dataset.KindBool},
	{Name: ColTrips, Kind: dataset.KindFloat},
	{Name: ColLength, Kind: dataset.KindFloat},
}

// AreaSchema is the column layout of the area lookup table.
var AreaSchema = dataset.Schema{
	{Name: ColID, Kind: dataset.KindInt},
	{Name: ColIdentifier, Kind: dataset.KindString},
	{Name: ColName, Kind: dataset.KindString},
}

// Records converts trip records into a dataset. A nil POIID becomes null.
func Records(recs []model.TripRecord) (*dataset.Dataset, error) {
	b := dataset.NewBuilder(RecordSchema)
	for _, r := range recs {
		poi := dataset.Null()
		if r.POIID != nil {
			poi = dataset.Int(*r.POIID)
		}
		b.Append(
			dataset.Int(r.AreaID),
			poi,
			dataset.String(r.Mode),
			dataset.Bool(r.IsInbound),
			dataset.Float(r.Trips),
			dataset.Float(r.Length),
		)
	}
	return b.Build()
}

// Areas converts areas into a lookup dataset.
func Areas(areas []model.Area) (*dataset.Dataset, error) {
	b := dataset.NewBuilder(AreaSchema)
	for _, a := range areas {
		b.Append(dataset.Int(a.ID), dataset.String(a.Identifier), dataset.String(a.Name))
	}
	return b.Build()
}
