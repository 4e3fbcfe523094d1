package errors

import (
	"errors"
	"fmt"
)

// Custom error types for the discovery service

// ErrNotFound is the root of the "nothing to do" class. Handlers map it to 404.
var ErrNotFound = errors.New("not found")

// ErrNoEligibleContent is returned by Select when the filtered candidate set is empty
var ErrNoEligibleContent = fmt.Errorf("no eligible content: %w", ErrNotFound)

// ErrLinkNotFound is returned when a referenced link id does not exist
var ErrLinkNotFound = fmt.Errorf("link not found: %w", ErrNotFound)

// ErrTopicNotFound is returned when a referenced topic slug does not exist
var ErrTopicNotFound = fmt.Errorf("topic not found: %w", ErrNotFound)

// ErrLinkAlreadyExists is returned when a submitted URL is already known
var ErrLinkAlreadyExists = errors.New("link already exists")

// ErrTopicAlreadyExists is returned when a topic slug is already taken
var ErrTopicAlreadyExists = errors.New("topic already exists")

// Validation causes, wrapped by ValidationError.
var (
	ErrMissingField  = errors.New("missing required field")
	ErrInvalidAction = errors.New("invalid action")
	ErrInvalidTopic  = errors.New("invalid topic filter")
	ErrInvalidURL    = errors.New("invalid URL format")
	ErrInvalidStatus = errors.New("invalid link status")
	ErrInvalidSlug   = errors.New("invalid slug")
)

// ValidationError is returned when caller input is missing or malformed.
// It is never retried and carries enough detail to fix the request.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v (%s)", e.Field, e.Err, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NewValidationError builds a ValidationError for field with the given cause.
func NewValidationError(field string, cause error, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Err: cause}
}

// DependencyError is returned when the link store or event ledger fails.
// The core does not retry; the message exposed to callers stays generic.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency failure during %s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// Dependency wraps err as a DependencyError unless it already belongs to a
// known class (validation, not found, duplicate), which is passed through.
func Dependency(op string, err error) error {
	if err == nil {
		return nil
	}
	var verr *ValidationError
	var derr *DependencyError
	if errors.As(err, &verr) || errors.As(err, &derr) ||
		errors.Is(err, ErrNotFound) || errors.Is(err, ErrLinkAlreadyExists) || errors.Is(err, ErrTopicAlreadyExists) {
		return err
	}
	return &DependencyError{Op: op, Err: err}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// IsNotFound reports whether err belongs to the not-found class.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ErrURLCheckFailed is returned when a link health check fails
type ErrURLCheckFailed struct {
	URL    string
	Reason string
}

func (e ErrURLCheckFailed) Error() string {
	return fmt.Sprintf("failed to check URL %s: %s", e.URL, e.Reason)
}

// ErrConfigLoad is returned when configuration loading or validation fails
type ErrConfigLoad struct {
	Path   string
	Reason string
}

func (e ErrConfigLoad) Error() string {
	return fmt.Sprintf("failed to load config from %s: %s", e.Path, e.Reason)
}
