package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrConflict      = errors.New("session conflict")
	ErrAlreadyExists = errors.New("already exists")

	// ErrOutsideHours is an InvalidInput: the session would run past closing.
	ErrOutsideHours = fmt.Errorf("%w: outside operating hours", ErrInvalidInput)
)

// NotFoundError names the missing record. It matches ErrNotFound.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError carries the sessions a requested interval overlaps.
type ConflictError struct {
	Sessions []Session
}

func (e *ConflictError) Error() string {
	ids := make([]string, len(e.Sessions))
	for i, s := range e.Sessions {
		ids[i] = s.ID
	}
	return fmt.Sprintf("overlaps %d session(s): %s", len(e.Sessions), strings.Join(ids, ", "))
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
