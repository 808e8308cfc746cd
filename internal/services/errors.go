package services

import (
	"errors"
	"fmt"

	"github.com/fyp-labs/adaptive-learning-platform/internal/validator"
)

// Sentinel errors. Handlers map them to HTTP statuses with errors.Is.
var (
	// NotFound
	ErrNotFound           = errors.New("not found")
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrCompanyNotFound    = fmt.Errorf("company %w", ErrNotFound)
	ErrTopicNotFound      = fmt.Errorf("topic %w", ErrNotFound)
	ErrFileNotFound       = fmt.Errorf("file %w", ErrNotFound)
	ErrAssessmentNotFound = fmt.Errorf("assessment %w", ErrNotFound)
	ErrAttemptNotFound    = fmt.Errorf("attempt %w", ErrNotFound)

	// Auth
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	ErrForbidden          = errors.New("forbidden")

	ErrValidationFailed = errors.New("validation failed")

	// ErrDefinitionMismatch means an assessment cannot be graded as defined
	ErrDefinitionMismatch = errors.New("assessment definition cannot be graded")

	// InvalidState
	ErrInvalidState            = errors.New("invalid state")
	ErrAttemptAlreadySubmitted = fmt.Errorf("%w: attempt already submitted", ErrInvalidState)
	ErrAttemptNotInProgress    = fmt.Errorf("%w: attempt is not in progress", ErrInvalidState)
	ErrAssessmentInactive      = fmt.Errorf("%w: assessment is not active", ErrInvalidState)
	ErrEmailTaken              = fmt.Errorf("%w: email already registered", ErrInvalidState)

	// ErrStorage wraps failures of the underlying store
	ErrStorage = errors.New("storage failure")
)

// ValidationErrors is re-exported so handlers only depend on services
type ValidationErrors = validator.ValidationErrors

// NewValidationError builds a single field error that matches ErrValidationFailed
func NewValidationError(field, message string, value interface{}) error {
	return &ValidationFailure{Errors: ValidationErrors{{
		Field:   field,
		Message: message,
		Value:   value,
		Rule:    "business_logic",
	}}}
}

// ValidationFailure wraps field errors
type ValidationFailure struct {
	Errors ValidationErrors
}

func (e *ValidationFailure) Error() string {
	return e.Errors.Error()
}

func (e *ValidationFailure) Unwrap() error {
	return ErrValidationFailed
}

// wrapValidation turns a validator error into a ValidationFailure
func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	return &ValidationFailure{Errors: validator.ToValidationErrors(err)}
}

// PermissionError describes a failed role or ownership check
type PermissionError struct {
	UserID   string
	Resource string
	ID       interface{}
	Action   string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %v", e.UserID, e.Action, e.Resource, e.ID)
}

func (e *PermissionError) Unwrap() error {
	return ErrForbidden
}

func NewPermissionError(userID, resource string, id interface{}, action string) error {
	return &PermissionError{UserID: userID, Resource: resource, ID: id, Action: action}
}

// storageError marks an unexpected repository failure
func storageError(action string, err error) error {
	return fmt.Errorf("%s: %w", action, errors.Join(ErrStorage, err))
}
