package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so transports can map them to status codes
type ErrorKind string

const (
	KindValidation ErrorKind = "VALIDATION"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindConflict   ErrorKind = "CONFLICT"
	KindAuth       ErrorKind = "AUTH"
	KindForbidden  ErrorKind = "FORBIDDEN"
	KindStore      ErrorKind = "STORE"
)

// Error is the error type returned across the service boundary.
// Field is set for validation failures and names the offending parameter.
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError reports a bad or missing input named by field
func NewValidationError(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// NewNotFoundError reports a referenced entity that does not exist
func NewNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// NewConflictError reports a uniqueness violation
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewAuthError reports bad or missing credentials
func NewAuthError(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

// NewForbiddenError reports an action on a protected resource
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NewStoreError wraps an underlying query failure; message is what callers may see.
func NewStoreError(message string, err error) *Error {
	return &Error{Kind: KindStore, Message: message, Err: err}
}

// KindOf returns the kind of err, treating unclassified errors as store failures.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// IsNotFound reports whether err is a not-found failure
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindNotFound
}
