package types

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	ErrNotFound              ErrorKind = "not_found"
	ErrUnauthorized          ErrorKind = "unauthorized"
	ErrInvalidTransition     ErrorKind = "invalid_transition"
	ErrConflict              ErrorKind = "conflict"
	ErrInsufficientInventory ErrorKind = "insufficient_inventory"
	ErrInvalidState          ErrorKind = "invalid_state"
	ErrValidation            ErrorKind = "validation_error"
)

// DomainError is the only error type crossing the engine boundary. Every
// operation either commits fully or returns one of these with no partial
// mutation left behind.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(kind ErrorKind, format string, args ...any) *DomainError {
	return &DomainError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewNotFound(format string, args ...any) *DomainError {
	return NewDomainError(ErrNotFound, format, args...)
}
func NewUnauthorized(format string, args ...any) *DomainError {
	return NewDomainError(ErrUnauthorized, format, args...)
}
func NewInvalidTransition(format string, args ...any) *DomainError {
	return NewDomainError(ErrInvalidTransition, format, args...)
}
func NewConflict(format string, args ...any) *DomainError {
	return NewDomainError(ErrConflict, format, args...)
}
func NewInsufficientInventory(format string, args ...any) *DomainError {
	return NewDomainError(ErrInsufficientInventory, format, args...)
}
func NewInvalidState(format string, args ...any) *DomainError {
	return NewDomainError(ErrInvalidState, format, args...)
}
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(ErrValidation, format, args...)
}

func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to the status its handler should answer with.
// Anything that is not a DomainError is treated as an internal failure.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrUnauthorized:
		return http.StatusForbidden
	case ErrInvalidTransition, ErrInvalidState:
		return http.StatusUnprocessableEntity
	case ErrConflict:
		return http.StatusConflict
	case ErrInsufficientInventory:
		return http.StatusConflict
	case ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
