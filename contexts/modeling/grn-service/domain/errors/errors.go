package errors

import "errors"

var (
	ErrInvalidModelInput   = errors.New("invalid model input")
	ErrUnknownGene         = errors.New("edge references an undeclared gene")
	ErrDuplicateEdge       = errors.New("duplicate regulator/target edge")
	ErrModelNotFound       = errors.New("model not found")
	ErrModelNotValidated   = errors.New("model has not passed validation")
	ErrModelNotDeletable   = errors.New("only draft models can be deleted")
	ErrNoPropertiesToCheck = errors.New("at least one property is required")
)
