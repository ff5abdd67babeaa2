package engine

import (
	"errors"
	"fmt"

	"github.com/dshills/chordboard/internal/input/key"
)

// Errors returned by engine operations.
var (
	// ErrNoProfile indicates an operation that needs a loaded profile.
	ErrNoProfile = errors.New("no profile loaded")

	// ErrPersistence wraps a failure of the repository. In-memory and OS
	// state are kept; the save should be retried.
	ErrPersistence = errors.New("persistence failure")

	// ErrInvariantViolation indicates a chord was held by more than one slot.
	ErrInvariantViolation = errors.New("chord uniqueness invariant violated")

	// ErrInvalidChord indicates a chord that may not be assigned.
	ErrInvalidChord = errors.New("invalid chord")

	// ErrUnsupportedPayload indicates a payload file with a disallowed
	// extension.
	ErrUnsupportedPayload = errors.New("unsupported payload type")
)

// InvariantError reports that more than one slot other than the target held
// a chord when it was assigned. The first of Slots was swapped.
type InvariantError struct {
	Chord key.Chord
	Slots []int
}

// Error implements error.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("%v: %q held by slots %v", ErrInvariantViolation, e.Chord, e.Slots)
}

// Is matches ErrInvariantViolation.
func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariantViolation
}

// PersistenceError wraps a repository failure with the slots it concerned.
type PersistenceError struct {
	Op    string
	Slots []int
	Err   error
}

// Error implements error.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s slots %v: %v", e.Op, e.Slots, e.Err)
}

// Unwrap returns the repository error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is matches ErrPersistence.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
