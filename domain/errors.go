package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeNetworkUnavailable ErrorCode = "NETWORK_UNAVAILABLE"
	ErrCodeProfileFetchFailed ErrorCode = "PROFILE_FETCH_FAILED"
	ErrCodeAlreadyInProgress  ErrorCode = "ALREADY_IN_PROGRESS"
	ErrCodeInvalid            ErrorCode = "INVALID"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrCodeUnknown            ErrorCode = "UNKNOWN"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrInvalidCredentials = NewError(ErrCodeInvalidCredentials, "invalid credentials")
	ErrNetworkUnavailable = NewError(ErrCodeNetworkUnavailable, "identity provider unreachable")
	ErrProfileFetchFailed = NewError(ErrCodeProfileFetchFailed, "profile fetch failed")
	ErrAlreadyInProgress  = NewError(ErrCodeAlreadyInProgress, "another session operation is in progress")
	ErrInvalidIdentity    = NewError(ErrCodeInvalid, "invalid identity")
	ErrInvalidPayload     = NewError(ErrCodeInvalid, "invalid payload")
	ErrForbidden          = NewError(ErrCodeForbidden, "forbidden")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// CodeOf extracts the domain code from an error, defaulting to UNKNOWN.
func CodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code
	}
	return ErrCodeUnknown
}
