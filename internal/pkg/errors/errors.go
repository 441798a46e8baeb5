package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")

	// Graph-integrity sentinels. These are always rejected outright and
	// never coerced into a silent success.
	ErrSelfLoop      = errors.New("concept cannot be its own prerequisite")
	ErrCycle         = errors.New("prerequisite would create a cycle")
	ErrDuplicateEdge = errors.New("prerequisite already exists")

	// ErrInvalidRating covers ratings outside the 1..4 review scale.
	ErrInvalidRating = errors.New("invalid rating")
)
