package poirank

import "errors"

// ErrInvalidTopN is returned when the ranking size is below one.
var ErrInvalidTopN = errors.New("invalid top-n size")
