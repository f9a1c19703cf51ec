package sim

import "errors"

var (
	// ErrInvalidConfig is returned at construction time for parameters the
	// simulator cannot run with (negative population, empty pools, ...).
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInsufficientData is returned when aggregation or labeling is asked
	// to work on an empty or too-small population.
	ErrInsufficientData = errors.New("insufficient data")
)
