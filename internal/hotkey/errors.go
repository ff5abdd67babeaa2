package hotkey

import (
	"errors"
	"fmt"

	"github.com/dshills/chordboard/internal/input/key"
)

// Registry errors
var (
	// ErrRegistrationConflict is returned when the OS refuses a registration,
	// usually because another process already owns the chord.
	ErrRegistrationConflict = errors.New("hotkey registration conflict")

	// ErrIdentifierInUse is returned when another slot already owns the
	// identifier inside this registry.
	ErrIdentifierInUse = errors.New("hotkey identifier in use by another slot")

	// ErrInvalidChord is returned when registering a chord that is not valid.
	ErrInvalidChord = errors.New("invalid chord")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("registry closed")
)

// ConflictError describes a chord the OS would not register.
// The slot keeps its chord but stays inert until the user changes it or
// the other owner releases it.
type ConflictError struct {
	Slot  int
	Chord key.Chord
	Err   error
}

// Error implements error.
func (e *ConflictError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("slot %d: cannot register %q: %v", e.Slot, e.Chord, e.Err)
	}
	return fmt.Sprintf("slot %d: cannot register %q", e.Slot, e.Chord)
}

// Unwrap returns the backend error.
func (e *ConflictError) Unwrap() error {
	return e.Err
}

// Is reports ErrRegistrationConflict as matching.
func (e *ConflictError) Is(target error) bool {
	return target == ErrRegistrationConflict
}

// Reason returns a short, user-facing reason.
func (e *ConflictError) Reason() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "already registered by another application"
}

// IsConflict returns true if err is or wraps a registration conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrRegistrationConflict)
}

// Conflicts extracts every ConflictError from err, including those joined
// with errors.Join.
func Conflicts(err error) []*ConflictError {
	if err == nil {
		return nil
	}
	var out []*ConflictError
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if ce, ok := e.(*ConflictError); ok {
			out = append(out, ce)
			return
		}
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				walk(inner)
			}
			return
		}
		walk(errors.Unwrap(e))
	}
	walk(err)
	return out
}

// Partition splits err into its registration conflicts and the remaining
// failures. Joined errors are split recursively.
func Partition(err error) ([]*ConflictError, []error) {
	var (
		conflicts []*ConflictError
		rest      []error
	)
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				walk(inner)
			}
			return
		}
		if found := Conflicts(e); len(found) > 0 {
			conflicts = append(conflicts, found...)
			return
		}
		rest = append(rest, e)
	}
	walk(err)
	return conflicts, rest
}
