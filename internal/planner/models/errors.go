package models

import (
	"errors"
	"strings"
)

// ============================================================
// Errors
// ============================================================

var (
	ErrNotFound                 = errors.New("not found")
	ErrSaveInProgress           = errors.New("layout save already in progress")
	ErrAssignmentNotImplemented = errors.New("table assignment is not implemented")
)

// ValidationError: некорректные входные данные. Messages показываются пользователю.
type ValidationError struct {
	Messages []string
}

func NewValidationError(msgs ...string) *ValidationError {
	return &ValidationError{Messages: msgs}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ". ")
}

// PersistenceError: сбой записи в хранилище.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "persist " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// FetchError: сбой чтения из хранилища.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return "fetch " + e.Op + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }
