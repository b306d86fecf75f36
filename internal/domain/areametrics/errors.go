package areametrics

import (
	"errors"

	"github.com/okian/tripmap/internal/domain/classify"
)

var (
	// ErrUnknownMode is returned when the selected mode has no columns in the input.
	ErrUnknownMode = errors.New("unknown mode")
	// ErrInsufficientData is returned when there are no areas to classify.
	ErrInsufficientData = classify.ErrInsufficientData
)
