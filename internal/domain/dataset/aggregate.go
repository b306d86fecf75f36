package dataset

import "fmt"

type aggOp uint8

const (
	opSum aggOp = iota + 1
	opCount
	opObjectAgg
)

// Aggregation describes one rollup output column.
type Aggregation struct {
	op     aggOp
	column string
	key    string
	as     string
}

// Sum adds up a numeric column. Nulls are skipped; an int column sums to an
// int, a float column to a float.
func Sum(column string) Aggregation {
	return Aggregation{op: opSum, column: column, as: "sum_" + column}
}

// Count counts the rows of each group.
func Count() Aggregation {
	return Aggregation{op: opCount, as: "count"}
}

// ObjectAgg builds a key -> value mapping per group from a string key column
// and a numeric value column. When a key repeats within a group the last
// value wins; callers that need totals must pre-aggregate by key first.
func ObjectAgg(keyColumn, valueColumn string) Aggregation {
	return Aggregation{op: opObjectAgg, key: keyColumn, column: valueColumn, as: "object_" + valueColumn}
}

// As names the output column.
func (a Aggregation) As(name string) Aggregation {
	a.as = name
	return a
}

// resolve validates the aggregation against schema and returns its output column.
func (a Aggregation) resolve(schema Schema) (Field, error) {
	switch a.op {
	case opCount:
		return Field{Name: a.as, Kind: KindInt}, nil
	case opSum:
		_, f, err := schema.field(a.column)
		if err != nil {
			return Field{}, err
		}
		if !f.Kind.Numeric() {
			return Field{}, fmt.Errorf("%w: sum over %s column %q", ErrType, f.Kind, a.column)
		}
		return Field{Name: a.as, Kind: f.Kind}, nil
	case opObjectAgg:
		_, kf, err := schema.field(a.key)
		if err != nil {
			return Field{}, err
		}
		if kf.Kind != KindString {
			return Field{}, fmt.Errorf("%w: object_agg key column %q is %s, not string", ErrType, a.key, kf.Kind)
		}
		_, vf, err := schema.field(a.column)
		if err != nil {
			return Field{}, err
		}
		if !vf.Kind.Numeric() {
			return Field{}, fmt.Errorf("%w: object_agg value column %q is %s, not numeric", ErrType, a.column, vf.Kind)
		}
		return Field{Name: a.as, Kind: KindObject}, nil
	default:
		return Field{}, fmt.Errorf("%w: unknown aggregation", ErrSchema)
	}
}

// apply evaluates a resolved aggregation over the given rows of d.
func (a Aggregation) apply(d *Dataset, rows []int) Value {
	switch a.op {
	case opCount:
		return Int(int64(len(rows)))
	case opSum:
		col := d.cols[d.schema.Index(a.column)]
		if d.schema[d.schema.Index(a.column)].Kind == KindInt {
			var total int64
			for _, r := range rows {
				total += col[r].AsInt()
			}
			return Int(total)
		}
		var total float64
		for _, r := range rows {
			total += col[r].AsFloat()
		}
		return Float(total)
	case opObjectAgg:
		keys := d.cols[d.schema.Index(a.key)]
		vals := d.cols[d.schema.Index(a.column)]
		m := make(map[string]float64, len(rows))
		for _, r := range rows {
			if keys[r].IsNull() || vals[r].IsNull() {
				continue
			}
			m[keys[r].AsString()] = vals[r].AsFloat()
		}
		return Value{kind: KindObject, obj: m}
	default:
		return Null()
	}
}
