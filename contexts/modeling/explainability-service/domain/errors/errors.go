package errors

import "errors"

var (
	ErrUnsupportedMethod      = errors.New("unsupported attribution method")
	ErrInvalidExplanationRef  = errors.New("explanation reference is missing a prediction")
	ErrExplanationNotFound    = errors.New("explanation not found")
	ErrAttributionUnavailable = errors.New("attributor produced no attributions")
)
