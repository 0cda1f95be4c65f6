package singleton

import (
	"errors"
	"fmt"
	"runtime/debug"
)

var (
	// ErrDuplicateName is returned when a registry already holds a manager with the same name
	ErrDuplicateName = errors.New("singleton: duplicate name")
	// ErrNotFound is returned when a registry holds no manager under a name
	ErrNotFound = errors.New("singleton: not found")
	// ErrDisposed is returned when registering on a disposed registry
	ErrDisposed = errors.New("singleton: registry disposed")
	// ErrNotConstructed is returned when an extension reports success without
	// letting the factory run
	ErrNotConstructed = errors.New("singleton: factory was not called")
)

// ConstructionError describes a failed construction. Extensions receive it
// through OnError; callers receive only Cause.
type ConstructionError struct {
	Manager    string
	Kind       OperationKind
	Attempt    int
	OpID       string
	Cause      error
	StackTrace []byte
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("construction error in %s during %s (attempt %d): %v", e.Manager, e.Kind, e.Attempt, e.Cause)
}

func (e *ConstructionError) Unwrap() error {
	return e.Cause
}

func newConstructionError(op *Operation, cause error) *ConstructionError {
	return &ConstructionError{
		Manager:    op.Manager.Name(),
		Kind:       op.Kind,
		Attempt:    op.Attempt,
		OpID:       op.ID,
		Cause:      cause,
		StackTrace: debug.Stack(),
	}
}
