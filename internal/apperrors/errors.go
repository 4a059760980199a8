package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates the caller is not authenticated.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates the caller lacks the capability for the action.
var ErrForbidden = errors.New("forbidden")

// ErrRemote indicates a third-party collaborator (payment processor, POD provider,
// calendar feed, social graph API) failed or returned an unusable response.
var ErrRemote = errors.New("remote collaborator failure")

// ErrSignature indicates an inbound webhook failed signature verification.
var ErrSignature = errors.New("invalid webhook signature")

// ErrConflict indicates the action collides with work already in progress.
var ErrConflict = errors.New("conflicting operation in progress")

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError wraps err with a status code and message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewBadRequestError is shorthand for a validation failure with a message.
func NewBadRequestError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: ErrValidation}
}

// NewRemoteError wraps a third-party failure for the given operation.
func NewRemoteError(operation string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrRemote, operation, err)
}
