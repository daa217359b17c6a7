// Package shared contains common domain types, errors and events
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation    = errors.New("validation error")
	ErrInvalidID     = errors.New("invalid ID")
	ErrInvalidInput  = errors.New("invalid input")
	ErrEmptyValue    = errors.New("value cannot be empty")
	ErrInvalidFormat = errors.New("invalid format")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")
	ErrNotReady        = errors.New("not ready")
	ErrBusy            = errors.New("request already in flight")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "student", "notification", "chat"
	Op      string // Operation that failed, e.g., "Select", "MarkRead"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Student domain errors
var (
	ErrStudentNotFound    = NewDomainError("student", "Find", ErrNotFound, "student not found")
	ErrInvalidStudentID   = NewDomainError("student", "Validate", ErrInvalidID, "student id cannot be empty")
	ErrInvalidStudentName = NewDomainError("student", "Validate", ErrEmptyValue, "student name cannot be empty")
)

// Notification domain errors
var (
	ErrNotificationNotFound = NewDomainError("notification", "Find", ErrNotFound, "notification not found")
	ErrInvalidNotification  = NewDomainError("notification", "Validate", ErrInvalidInput, "invalid notification")
	ErrInvalidFilter        = NewDomainError("notification", "Filter", ErrInvalidInput, "filter must be all or unread")
)

// Chat domain errors
var (
	ErrEmptyMessage     = NewDomainError("chat", "Send", ErrEmptyValue, "message text cannot be empty")
	ErrRequestInFlight  = NewDomainError("chat", "Send", ErrBusy, "a previous message is still being answered")
	ErrUnknownStrategy  = NewDomainError("chat", "Configure", ErrInvalidInput, "unknown chat strategy")
	ErrCompletionFailed = NewDomainError("chat", "Complete", ErrExternalService, "completion backend request failed")
)

// Catalog domain errors
var (
	ErrResourceNotFound = NewDomainError("catalog", "FindResource", ErrNotFound, "resource not found")
	ErrInvalidCategory  = NewDomainError("catalog", "Filter", ErrInvalidInput, "unknown resource category")
	ErrInvalidDateRange = NewDomainError("catalog", "EventsBetween", ErrInvalidInput, "range end is before range start")
)

// Readiness errors
var (
	ErrGateNotReady       = NewDomainError("readiness", "Guard", ErrNotReady, "application is still initializing")
	ErrGateRetryExhausted = NewDomainError("readiness", "Run", ErrInvalidState, "initialization retries exhausted")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsNotReady checks if the error means the application has not finished initializing.
func IsNotReady(err error) bool {
	return errors.Is(err, ErrNotReady)
}

// IsBusy checks if the error is a backpressure rejection.
func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}
