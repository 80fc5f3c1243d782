package spline

import "errors"

var (
	// ErrInvalidSamples reports a sample set that violates the construction
	// preconditions: mismatched lengths, fewer than two points, non-finite
	// values or abscissas that are not strictly increasing.
	ErrInvalidSamples = errors.New("spline: invalid samples")

	// ErrCapacity reports an input that does not fit a fixed-capacity spline,
	// or a capacity below two breakpoints.
	ErrCapacity = errors.New("spline: capacity exceeded")

	// ErrNotBuilt reports use of a spline before a successful Set.
	ErrNotBuilt = errors.New("spline: not built")
)
