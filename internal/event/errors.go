package event

import (
	"errors"
	"fmt"
)

// Bus errors
var (
	ErrInvalidEvent         = errors.New("invalid event")
	ErrInvalidTopic         = errors.New("invalid topic")
	ErrNilHandler           = errors.New("handler cannot be nil")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrHandlerPanic         = errors.New("handler panicked")
)

// PanicError wraps a value recovered from a handler.
type PanicError struct {
	SubscriptionID string
	Topic          Topic
	Value          any
}

// Error implements error.
func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic for subscription %s on topic %s: %v", e.SubscriptionID, e.Topic, e.Value)
}

// Is matches ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}
