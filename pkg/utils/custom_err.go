package utils

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountNotVerified = errors.New("account email not verified")
	ErrProviderNotFound   = errors.New("provider profile not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrDeliveryFailed     = errors.New("email delivery failed")
	ErrDatabaseError      = errors.New("database error")
)

// ValidationError names the offending request field. It matches ErrValidation under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
