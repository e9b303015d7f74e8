package errors

import "errors"

var (
	ErrInsufficientInputs   = errors.New("at least two method outputs are required")
	ErrInvalidMethodOutput  = errors.New("method output score or confidence out of range")
	ErrUnknownStrategy      = errors.New("unknown ensemble strategy")
	ErrNoUsableInput        = errors.New("no usable input for the requested strategy")
	ErrPredictionNotFound   = errors.New("ensemble prediction not found")
	ErrInvalidPredictionRef = errors.New("prediction reference is missing a patient")

	ErrPlanRoutesUnavailable = errors.New("analysis plan routes could not be resolved")
)
