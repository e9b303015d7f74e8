package errors

import "errors"

var (
	ErrInvalidPatientInput  = errors.New("invalid patient input")
	ErrConsentRequired      = errors.New("patient consent is required")
	ErrPatientNotFound      = errors.New("patient not found")
	ErrInvalidArtifactInput = errors.New("invalid artifact input")
	ErrArtifactNotFound     = errors.New("artifact not found")
)
