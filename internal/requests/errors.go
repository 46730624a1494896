package requests

import "errors"

var (
	// ErrInvalidOrigin is returned for a search origin outside valid ranges.
	ErrInvalidOrigin = errors.New("invalid coordinates: origin out of range")
	// ErrInvalidRadius is returned for a non-positive search radius.
	ErrInvalidRadius = errors.New("invalid input: radius must be positive")
)
