package domain

import "errors"

var (
	// ErrInvalidRange is returned when a year range ends before it starts.
	ErrInvalidRange = errors.New("invalid year range")

	// ErrInvalidParameter is returned for out-of-domain arguments such as a
	// non-positive smoothing window or an unknown scenario.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInsufficientData is returned when a trend fit has fewer than 2 points.
	ErrInsufficientData = errors.New("insufficient data")
)

// IsClientError reports whether err belongs to the domain error taxonomy and
// is therefore the caller's to fix rather than an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidParameter) ||
		errors.Is(err, ErrInsufficientData)
}
