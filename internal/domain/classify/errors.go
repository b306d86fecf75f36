package classify

import "errors"

// Sentinel kinds for classification errors.
var (
	// ErrInsufficientData reports an attempt to classify an empty value set.
	// Callers render this as "no data" rather than failing.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidClasses reports a class count below one.
	ErrInvalidClasses = errors.New("invalid class count")
)
