// Package apperrors holds the sentinel errors services return and the
// CustomError wrapper that carries a client-facing message.
package apperrors

import "errors"

// Generic kinds. HandleAPIError maps each to a status code.
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
	ErrResourceNotFound = errors.New("resource not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrConflict         = errors.New("conflict")

	// Mail delivery and similar. Logged, never surfaced.
	ErrExternalService = errors.New("external service failure")
)

// Identity
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCollege     = errors.New("invalid college selection")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidEmailToken  = errors.New("invalid or expired email verification token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
)

// Activities and inbox
var (
	ErrActivityNotFound     = errors.New("activity not found")
	ErrConcurrentUpdate     = errors.New("activity was modified concurrently, please retry")
	ErrNotificationNotFound = errors.New("notification not found")
)

// CustomError pairs a sentinel with the message shown to clients
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

func (e *CustomError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError wraps err with a client-facing message
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{Err: err, Message: message}
}

// WithDetails attaches structured context, e.g. the activity id of a conflict
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

func NewResourceNotFoundError(message string) error {
	return NewCustomError(ErrResourceNotFound, message)
}

func NewForbiddenError(message string) error {
	return NewCustomError(ErrPermissionDenied, message)
}

func NewBadRequestError(message string) error {
	return NewCustomError(ErrBadRequest, message)
}

func NewValidationError(message string) error {
	return NewCustomError(ErrValidationFailed, message)
}

// Is reports whether err matches target or any of others
func Is(err, target error, others ...error) bool {
	if errors.Is(err, target) {
		return true
	}
	for _, e := range others {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// MessageOf returns the message carried by a CustomError in err's chain, or fallback.
func MessageOf(err error, fallback string) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}
