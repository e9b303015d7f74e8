package errors

import "errors"

var (
	ErrInvalidRegistration = errors.New("invalid registration input")
	ErrUsernameTaken       = errors.New("username is already registered")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserInactive        = errors.New("user account is deactivated")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrAdminRequired       = errors.New("admin role is required")
)
