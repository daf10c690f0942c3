package posts

import (
	"errors"
	"fmt"
)

// Sentinel errors for common post operations
var (
	// ErrForbidden is returned when the requester's role/ownership does not
	// permit the attempted mutation
	ErrForbidden = errors.New("not authorized to modify this post")

	// ErrConcurrentUpdate is returned when a conditional write lost its race
	// and retries were exhausted
	ErrConcurrentUpdate = errors.New("post was modified concurrently, please retry")
)

// ValidationError represents a malformed or out-of-range input with field context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%s): %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// NotFoundError represents a missing post or reply
type NotFoundError struct {
	Resource string // "post" or "reply"
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// AlreadyVotedError is returned when a user re-casts a vote of the same
// polarity on the same post
type AlreadyVotedError struct {
	PostID string
	Like   bool
}

func (e *AlreadyVotedError) Error() string {
	if e.Like {
		return fmt.Sprintf("you already liked post %s", e.PostID)
	}
	return fmt.Sprintf("you already disliked post %s", e.PostID)
}

// IsConflict checks if error is a vote-uniqueness violation or a lost
// write race; callers must change their request rather than blindly retry
func IsConflict(err error) bool {
	var voted *AlreadyVotedError
	return errors.As(err, &voted) || errors.Is(err, ErrConcurrentUpdate)
}

// IsForbidden checks if error is a role/ownership rejection
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}
