package dataset

import "errors"

// Sentinel kinds for dataset errors. Callers match with errors.Is.
var (
	// ErrSchema reports a reference to a column the dataset does not have,
	// or a schema that cannot be built (duplicate or empty names).
	ErrSchema = errors.New("schema error")
	// ErrType reports an operation applied to a column of an incompatible kind.
	ErrType = errors.New("type error")
)
