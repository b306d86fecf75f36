// Package dataset implements an immutable, column-oriented record collection
// with typed columns.
//
// Every operation returns a new Dataset and leaves its receiver untouched, so
// derived datasets can be shared and memoized freely. Column slices are shared
// between a dataset and the datasets derived from it; they are never written
// after construction.
package dataset

import (
	"fmt"
	"maps"
	"slices"
	"sort"
)

// Direction selects the sort order of OrderBy.
type Direction uint8

// Sort directions.
const (
	Asc Direction = iota
	Desc
)

// Params is a named parameter set bound to a dataset and handed to filter
// predicates, so a predicate can be written once and reused.
type Params map[string]Value

// Get returns the named parameter, or null.
func (p Params) Get(name string) Value { return p[name] }

// Predicate decides whether a row is kept by Filter.
type Predicate func(r Row, p Params) bool

// Dataset is an ordered sequence of rows sharing a schema, optionally
// partitioned into groups.
type Dataset struct {
	schema Schema
	cols   [][]Value
	n      int
	params Params

	// grouping state; groups holds row indices per group in first-seen order.
	groupBy []string
	groups  [][]int
}

// New builds a dataset from positional rows. Each row must have one value per
// schema column; values must match the column kind or be null (ints widen
// into float columns).
func New(schema Schema, rows ...[]Value) (*Dataset, error) {
	b := NewBuilder(schema)
	for _, r := range rows {
		b.Append(r...)
	}
	return b.Build()
}

// Builder accumulates rows for a new dataset.
type Builder struct {
	schema Schema
	cols   [][]Value
	n      int
	err    error
}

// NewBuilder starts a dataset with the given schema.
func NewBuilder(schema Schema) *Builder {
	b := &Builder{schema: slices.Clone(schema)}
	if err := b.schema.validate(); err != nil {
		b.err = err
		return b
	}
	b.cols = make([][]Value, len(schema))
	return b
}

// Append adds one positional row. The first error sticks and is reported by Build.
func (b *Builder) Append(values ...Value) *Builder {
	if b.err != nil {
		return b
	}
	if len(values) != len(b.schema) {
		b.err = fmt.Errorf("%w: row %d has %d values, schema has %d columns", ErrSchema, b.n, len(values), len(b.schema))
		return b
	}
	for i, v := range values {
		cv, ok := coerce(b.schema[i].Kind, v)
		if !ok {
			b.err = fmt.Errorf("%w: column %q expects %s, got %s", ErrType, b.schema[i].Name, b.schema[i].Kind, v.Kind())
			return b
		}
		b.cols[i] = append(b.cols[i], cv)
	}
	b.n++
	return b
}

// Build returns the dataset or the first error met while appending.
func (b *Builder) Build() (*Dataset, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &Dataset{schema: b.schema, cols: b.cols, n: b.n}, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return d.n }

// Schema returns a copy of the column declarations.
func (d *Dataset) Schema() Schema { return slices.Clone(d.schema) }

// Has reports whether the named column exists.
func (d *Dataset) Has(name string) bool { return d.schema.Index(name) >= 0 }

// Grouped reports whether the dataset is partitioned by GroupBy.
func (d *Dataset) Grouped() bool { return len(d.groupBy) > 0 }

// ColumnNames lists the columns whose names satisfy keep, in schema order.
// A nil keep lists every column.
func (d *Dataset) ColumnNames(keep func(name string) bool) []string {
	var names []string
	for _, f := range d.schema {
		if keep == nil || keep(f.Name) {
			names = append(names, f.Name)
		}
	}
	return names
}

// Params returns a dataset with p merged over the currently bound parameters.
func (d *Dataset) Params(p Params) *Dataset {
	out := d.clone()
	merged := maps.Clone(d.params)
	if merged == nil {
		merged = Params{}
	}
	maps.Copy(merged, p)
	out.params = merged
	return out
}

// Filter keeps the rows satisfying pred. Grouping is preserved.
func (d *Dataset) Filter(pred Predicate) *Dataset {
	idx := make([]int, 0, d.n)
	for i := 0; i < d.n; i++ {
		if pred(Row{d: d, i: i}, d.params) {
			idx = append(idx, i)
		}
	}
	return d.take(idx)
}

// Select projects the dataset onto the named columns, in the given order.
// If a grouping column is dropped the result is ungrouped.
func (d *Dataset) Select(columns ...string) (*Dataset, error) {
	schema := make(Schema, 0, len(columns))
	cols := make([][]Value, 0, len(columns))
	for _, name := range columns {
		i, f, err := d.schema.field(name)
		if err != nil {
			return nil, err
		}
		schema = append(schema, f)
		cols = append(cols, d.cols[i])
	}
	if err := schema.validate(); err != nil {
		return nil, err
	}
	out := &Dataset{schema: schema, cols: cols, n: d.n, params: d.params}
	for _, g := range d.groupBy {
		if out.schema.Index(g) < 0 {
			return out, nil
		}
	}
	out.groupBy = d.groupBy
	out.regroup()
	return out, nil
}

// GroupBy partitions the rows by the distinct combinations of the named
// columns. Groups keep the order in which their first row appears.
func (d *Dataset) GroupBy(columns ...string) (*Dataset, error) {
	for _, name := range columns {
		_, f, err := d.schema.field(name)
		if err != nil {
			return nil, err
		}
		if f.Kind == KindObject {
			return nil, fmt.Errorf("%w: cannot group by object column %q", ErrType, name)
		}
	}
	out := d.clone()
	out.groupBy = slices.Clone(columns)
	out.regroup()
	return out, nil
}

// Ungroup drops the grouping.
func (d *Dataset) Ungroup() *Dataset {
	out := d.clone()
	out.groupBy = nil
	out.groups = nil
	return out
}

// Rollup computes the aggregations for every group and emits one row per
// group: the grouping columns followed by the aggregates. An ungrouped
// dataset rolls up into exactly one row. The result is ungrouped.
func (d *Dataset) Rollup(aggs ...Aggregation) (*Dataset, error) {
	schema := make(Schema, 0, len(d.groupBy)+len(aggs))
	keyIdx := make([]int, len(d.groupBy))
	for i, g := range d.groupBy {
		j, f, err := d.schema.field(g)
		if err != nil {
			return nil, err
		}
		keyIdx[i] = j
		schema = append(schema, f)
	}
	outFields := make([]Field, len(aggs))
	for i, a := range aggs {
		f, err := a.resolve(d.schema)
		if err != nil {
			return nil, err
		}
		outFields[i] = f
		schema = append(schema, f)
	}
	if err := schema.validate(); err != nil {
		return nil, err
	}

	parts := d.groups
	if !d.Grouped() {
		all := make([]int, d.n)
		for i := range all {
			all[i] = i
		}
		parts = [][]int{all}
	}

	b := NewBuilder(schema)
	row := make([]Value, len(schema))
	for _, part := range parts {
		for i, j := range keyIdx {
			row[i] = d.cols[j][part[0]]
		}
		for i, a := range aggs {
			row[len(keyIdx)+i] = a.apply(d, part)
		}
		b.Append(row...)
	}
	out, err := b.Build()
	if err != nil {
		return nil, err
	}
	out.params = d.params
	return out, nil
}

// OrderBy stable-sorts the rows by one column. Rows with equal keys keep
// their relative order and nulls sort last in both directions.
func (d *Dataset) OrderBy(column string, dir Direction) (*Dataset, error) {
	j, f, err := d.schema.field(column)
	if err != nil {
		return nil, err
	}
	if f.Kind == KindObject {
		return nil, fmt.Errorf("%w: cannot order by object column %q", ErrType, column)
	}
	col := d.cols[j]
	idx := make([]int, d.n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := col[idx[a]], col[idx[b]]
		switch {
		case va.IsNull():
			return false
		case vb.IsNull():
			return true
		}
		c := compare(va, vb)
		if dir == Desc {
			return c > 0
		}
		return c < 0
	})
	return d.take(idx), nil
}

// Slice keeps count rows starting at position start. On a grouped dataset
// every group is sliced independently ("top N per group") and the surviving
// rows keep their original order. A negative count keeps the rest.
func (d *Dataset) Slice(start, count int) *Dataset {
	if start < 0 {
		start = 0
	}
	window := func(n int) (int, int) {
		lo := min(start, n)
		hi := n
		if count >= 0 {
			hi = min(lo+count, n)
		}
		return lo, hi
	}
	if !d.Grouped() {
		lo, hi := window(d.n)
		idx := make([]int, 0, hi-lo)
		for i := lo; i < hi; i++ {
			idx = append(idx, i)
		}
		return d.take(idx)
	}
	var idx []int
	for _, part := range d.groups {
		lo, hi := window(len(part))
		idx = append(idx, part[lo:hi]...)
	}
	slices.Sort(idx)
	return d.take(idx)
}

// Lookup left-joins columns of other onto d, matching d[leftKey] with
// other[rightKey]. The first matching row of other wins. Rows without a
// match carry nulls in the imported columns.
func (d *Dataset) Lookup(other *Dataset, leftKey, rightKey string, columns ...string) (*Dataset, error) {
	li, lf, err := d.schema.field(leftKey)
	if err != nil {
		return nil, err
	}
	ri, rf, err := other.schema.field(rightKey)
	if err != nil {
		return nil, err
	}
	if lf.Kind != rf.Kind {
		return nil, fmt.Errorf("%w: join keys %q (%s) and %q (%s) differ", ErrType, leftKey, lf.Kind, rightKey, rf.Kind)
	}

	index := make(map[string]int, other.n)
	for i, v := range other.cols[ri] {
		if v.IsNull() {
			continue
		}
		if _, ok := index[v.key()]; !ok {
			index[v.key()] = i
		}
	}

	schema := slices.Clone(d.schema)
	cols := slices.Clone(d.cols)
	for _, name := range columns {
		oi, of, err := other.schema.field(name)
		if err != nil {
			return nil, err
		}
		if d.schema.Index(name) >= 0 {
			return nil, fmt.Errorf("%w: lookup column %q already exists", ErrSchema, name)
		}
		col := make([]Value, d.n)
		for i, k := range d.cols[li] {
			if k.IsNull() {
				continue
			}
			if m, ok := index[k.key()]; ok {
				col[i] = other.cols[oi][m]
			}
		}
		schema = append(schema, of)
		cols = append(cols, col)
	}
	if err := schema.validate(); err != nil {
		return nil, err
	}
	out := &Dataset{schema: schema, cols: cols, n: d.n, params: d.params, groupBy: d.groupBy}
	out.regroup()
	return out, nil
}

// Derive adds (or replaces) a column computed from each row.
func (d *Dataset) Derive(field Field, fn func(r Row) Value) (*Dataset, error) {
	if err := (Schema{field}).validate(); err != nil {
		return nil, err
	}
	col := make([]Value, d.n)
	for i := 0; i < d.n; i++ {
		v, ok := coerce(field.Kind, fn(Row{d: d, i: i}))
		if !ok {
			return nil, fmt.Errorf("%w: derived column %q expects %s", ErrType, field.Name, field.Kind)
		}
		col[i] = v
	}
	schema := slices.Clone(d.schema)
	cols := slices.Clone(d.cols)
	if j := schema.Index(field.Name); j >= 0 {
		schema[j] = field
		cols[j] = col
	} else {
		schema = append(schema, field)
		cols = append(cols, col)
	}
	out := &Dataset{schema: schema, cols: cols, n: d.n, params: d.params, groupBy: d.groupBy}
	out.regroup()
	return out, nil
}

// Array materializes a column as an ordered slice.
func (d *Dataset) Array(column string) ([]Value, error) {
	j, _, err := d.schema.field(column)
	if err != nil {
		return nil, err
	}
	return slices.Clone(d.cols[j]), nil
}

// Floats materializes a numeric column, skipping nulls.
func (d *Dataset) Floats(column string) ([]float64, error) {
	j, f, err := d.schema.field(column)
	if err != nil {
		return nil, err
	}
	if !f.Kind.Numeric() {
		return nil, fmt.Errorf("%w: column %q is %s, not numeric", ErrType, column, f.Kind)
	}
	out := make([]float64, 0, d.n)
	for _, v := range d.cols[j] {
		if !v.IsNull() {
			out = append(out, v.AsFloat())
		}
	}
	return out, nil
}

// Rows returns read-only views of every row, in order.
func (d *Dataset) Rows() []Row {
	rows := make([]Row, d.n)
	for i := range rows {
		rows[i] = Row{d: d, i: i}
	}
	return rows
}

// Objects materializes every row as a column name -> value map.
func (d *Dataset) Objects() []map[string]Value {
	out := make([]map[string]Value, d.n)
	for i := range out {
		out[i] = Row{d: d, i: i}.Map()
	}
	return out
}

// Group is one partition of a grouped dataset.
type Group struct {
	// Key holds the grouping column values shared by the rows.
	Key  map[string]Value
	Rows []Row
}

// Groups returns the partitions in first-seen order. An ungrouped dataset
// yields a single group with an empty key (none when it has no rows).
func (d *Dataset) Groups() []Group {
	if !d.Grouped() {
		if d.n == 0 {
			return nil
		}
		return []Group{{Key: map[string]Value{}, Rows: d.Rows()}}
	}
	out := make([]Group, len(d.groups))
	for gi, part := range d.groups {
		first := Row{d: d, i: part[0]}
		key := make(map[string]Value, len(d.groupBy))
		for _, g := range d.groupBy {
			key[g] = first.Get(g)
		}
		rows := make([]Row, len(part))
		for i, r := range part {
			rows[i] = Row{d: d, i: r}
		}
		out[gi] = Group{Key: key, Rows: rows}
	}
	return out
}

func (d *Dataset) clone() *Dataset {
	out := *d
	return &out
}

// take gathers the given rows into a new dataset, keeping schema, params and
// grouping columns.
func (d *Dataset) take(idx []int) *Dataset {
	cols := make([][]Value, len(d.cols))
	for j, col := range d.cols {
		c := make([]Value, len(idx))
		for i, r := range idx {
			c[i] = col[r]
		}
		cols[j] = c
	}
	out := &Dataset{schema: d.schema, cols: cols, n: len(idx), params: d.params, groupBy: d.groupBy}
	out.regroup()
	return out
}

// regroup recomputes the partitions from groupBy.
func (d *Dataset) regroup() {
	d.groups = nil
	if len(d.groupBy) == 0 {
		return
	}
	keyIdx := make([]int, len(d.groupBy))
	for i, g := range d.groupBy {
		keyIdx[i] = d.schema.Index(g)
	}
	pos := make(map[string]int)
	for r := 0; r < d.n; r++ {
		k := ""
		for _, j := range keyIdx {
			k += d.cols[j][r].key() + "\x00"
		}
		gi, ok := pos[k]
		if !ok {
			gi = len(d.groups)
			pos[k] = gi
			d.groups = append(d.groups, nil)
		}
		d.groups[gi] = append(d.groups[gi], r)
	}
}
