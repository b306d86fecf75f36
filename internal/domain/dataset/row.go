package dataset

// Row is a read-only view of one dataset row.
type Row struct {
	d *Dataset
	i int
}

// Get returns the named column value; unknown columns read as null.
func (r Row) Get(name string) Value {
	j := r.d.schema.Index(name)
	if j < 0 {
		return Null()
	}
	return r.d.cols[j][r.i]
}

// Int reads the named column as an integer.
func (r Row) Int(name string) int64 { return r.Get(name).AsInt() }

// Float reads the named column as a float.
func (r Row) Float(name string) float64 { return r.Get(name).AsFloat() }

// Str reads the named column as a string.
func (r Row) Str(name string) string { return r.Get(name).AsString() }

// Bool reads the named column as a boolean.
func (r Row) Bool(name string) bool { return r.Get(name).AsBool() }

// Map copies the row into a column name -> value map.
func (r Row) Map() map[string]Value {
	m := make(map[string]Value, len(r.d.schema))
	for j, f := range r.d.schema {
		m[f.Name] = r.d.cols[j][r.i]
	}
	return m
}
