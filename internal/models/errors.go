package models

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAuthorNotFound      = errors.New("author not found")
	ErrCorruptCategory     = errors.New("corrupt category")
	ErrConstraintViolation = errors.New("constraint violation")
)

// CategoryError reports stored category text outside the Category set.
type CategoryError struct {
	Value string
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("%v: %q", ErrCorruptCategory, e.Value)
}

func (e *CategoryError) Is(target error) bool {
	return target == ErrCorruptCategory
}

// ConstraintError is a store constraint failure no domain rule anticipated.
type ConstraintError struct {
	Op  string
	Err error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrConstraintViolation, e.Err)
}

func (e *ConstraintError) Is(target error) bool {
	return target == ErrConstraintViolation
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}
