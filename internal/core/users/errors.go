package users

import (
	"errors"
	"fmt"
)

var (
	// ErrUsernameTaken is returned when registering a username that
	// already belongs to another account
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials is returned on login with a wrong username or
	// password; the two cases are deliberately indistinguishable
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrForbidden is returned when the requester lacks permission for
	// the operation
	ErrForbidden = errors.New("forbidden")
)

// ValidationError indicates a malformed request field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFoundError indicates the requested user does not exist
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("user not found: %s", e.ID)
}

func NewNotFoundError(id string) *NotFoundError {
	return &NotFoundError{ID: id}
}

func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrUsernameTaken)
}
