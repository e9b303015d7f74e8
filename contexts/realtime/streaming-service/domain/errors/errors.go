package errors

import "errors"

var (
	ErrInvalidVitalEvent = errors.New("invalid vital event")
	ErrUnknownMetric     = errors.New("unknown vital metric")
	ErrAlertNotFound     = errors.New("alert not found")
	ErrAlertAcknowledged = errors.New("alert is already acknowledged")
	ErrEventNotFound     = errors.New("vital event not found")
)
