package errors

import "errors"

var (
	ErrInvalidWorkflowInput   = errors.New("invalid workflow input")
	ErrUnknownWorkflowType    = errors.New("unknown workflow type")
	ErrWorkflowNotFound       = errors.New("workflow not found")
	ErrInvalidTransition      = errors.New("invalid workflow status transition")
	ErrWorkflowNotRetryable   = errors.New("workflow is not in a retryable state")
	ErrWorkflowNotRunning     = errors.New("workflow is not running")
	ErrResultsNotReady        = errors.New("workflow results are not ready")
	ErrWorkflowCancelled      = errors.New("workflow was cancelled")
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	ErrIdempotencyConflict    = errors.New("idempotency key reused with a different request")
	ErrNoExecutor             = errors.New("no executor registered for workflow type")
)
