package errors

import "errors"

var (
	ErrInvalidPlanInput       = errors.New("invalid analysis plan input")
	ErrNoApplicableMethod     = errors.New("no modeling method applies to the data profile")
	ErrPlanNotFound           = errors.New("analysis plan not found")
	ErrPlanAlreadyDispatched  = errors.New("analysis plan is already dispatched")
	ErrUnknownRequestedMethod = errors.New("unknown requested method")
)
