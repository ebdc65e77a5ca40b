package manifest

import (
	"errors"
	"fmt"
)

// Error kinds shared by the manifest and the builders that fill it.
var (
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrAttributeMismatch = errors.New("attribute mismatch")
	ErrInvariant         = errors.New("invariant violation")
	ErrInvalidData       = errors.New("invalid data")
)

// EntityError names the entity that failed by kind and index, e.g.
// "node 3: mesh: index out of range".
type EntityError struct {
	Kind  string
	Index int
	Field string
	Err   error
}

func (e *EntityError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s %d: %v", e.Kind, e.Index, e.Err)
	}
	return fmt.Sprintf("%s %d: %s: %v", e.Kind, e.Index, e.Field, e.Err)
}

func (e *EntityError) Unwrap() error { return e.Err }

// Errorf returns an EntityError whose cause wraps one of the sentinel errors
// via format, e.g. Errorf("node", 3, "mesh", "%d of %d: %w", 7, 2, ErrIndexOutOfRange).
func Errorf(kind string, index int, field, format string, args ...any) *EntityError {
	return &EntityError{Kind: kind, Index: index, Field: field, Err: fmt.Errorf(format, args...)}
}

// outOfRange is the common "reference i of n" failure.
func outOfRange(kind string, index int, field string, ref, n int) *EntityError {
	return Errorf(kind, index, field, "%d of %d: %w", ref, n, ErrIndexOutOfRange)
}
