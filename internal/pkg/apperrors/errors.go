package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Authentication errors
	ErrUnauthorized       = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")
	ErrReadonlyYear     = errors.New("enrollment year is read-only")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Dependency errors
	ErrSimilarityUnavailable = errors.New("similarity search unavailable")
	ErrFeatureDisabled       = errors.New("feature is not enabled")
)

// Domain not-found errors, all wrapping ErrResourceNotFound
var (
	ErrParticipantNotFound = NewCustomError(ErrResourceNotFound, "participant not found")
	ErrCohortNotFound      = NewCustomError(ErrResourceNotFound, "cohort not found")
	ErrImperioNotFound     = NewCustomError(ErrResourceNotFound, "império not found")
	ErrEventDayNotFound    = NewCustomError(ErrResourceNotFound, "event day not found")
	ErrUserNotFound        = NewCustomError(ErrResourceNotFound, "user not found")
)

// SimilarityHint tells operators how to recover from a missing pg_trgm extension.
const SimilarityHint = "run CREATE EXTENSION pg_trgm or set duplicates.similarity_backend=application"

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewValidationError creates a validation error bound to a single field
func NewValidationError(field, message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Details: map[string]interface{}{"field": field},
	}
}

// NewReadonlyYearError reports a write attempted against a closed enrollment year
func NewReadonlyYearError(year, current int) error {
	return &CustomError{
		Err:     ErrReadonlyYear,
		Message: "enrollment year is read-only",
		Details: map[string]interface{}{"year": year, "current_year": current},
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithStatusMsg adds a user-friendly status message
func (e *CustomError) WithStatusMsg(msg string) *CustomError {
	e.StatusMsg = msg
	return e
}
