// Package common defines sentinel errors shared by the repositories, services
// and web layer of Tegenaria. Callers should use errors.Is / errors.As to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Authentication errors. They are distinct for logging but the web layer
	// renders all of them with the same generic message.
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user not activated")

	// Session token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Data integrity errors.
	ErrCoercion = errors.New("value is not numeric")
)

// CoercionError reports a stored text value that could not be read as a
// number. It matches ErrCoercion with errors.Is.
type CoercionError struct {
	RecordID int64
	Field    string
	Value    string
	Err      error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("record %d: %s %q: %v", e.RecordID, e.Field, e.Value, ErrCoercion)
}

func (e *CoercionError) Is(target error) bool {
	return target == ErrCoercion
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}
