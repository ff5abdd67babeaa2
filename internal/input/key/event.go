package key

import (
	"fmt"
	"time"
)

// Kind distinguishes key-down from key-up events.
type Kind uint8

const (
	// KindDown is a key press (or an auto-repeat of one).
	KindDown Kind = iota

	// KindUp is a key release.
	KindUp
)

// String returns "down" or "up".
func (k Kind) String() string {
	if k == KindUp {
		return "up"
	}
	return "down"
}

// Event represents a raw key event from a UI collaborator.
type Event struct {
	// Kind is down or up.
	Kind Kind

	// Code identifies the key.
	Code Code

	// Repeat is set for auto-repeat key-downs generated while a key is held.
	Repeat bool

	// Held is the snapshot of modifiers still held after this event.
	Held Modifier

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// NewDown creates a key-down event with the current timestamp.
func NewDown(code Code, held Modifier) Event {
	return Event{
		Kind:      KindDown,
		Code:      code,
		Held:      held,
		Timestamp: time.Now(),
	}
}

// NewRepeat creates an auto-repeat key-down event.
func NewRepeat(code Code, held Modifier) Event {
	ev := NewDown(code, held)
	ev.Repeat = true
	return ev
}

// NewUp creates a key-up event.
func NewUp(code Code, held Modifier) Event {
	return Event{
		Kind:      KindUp,
		Code:      code,
		Held:      held,
		Timestamp: time.Now(),
	}
}

// IsDown returns true for key-down events, repeats included.
func (e Event) IsDown() bool {
	return e.Kind == KindDown
}

// IsUp returns true for key-up events.
func (e Event) IsUp() bool {
	return e.Kind == KindUp
}

// Equals returns true if two events describe the same key action.
// Timestamps are not compared.
func (e Event) Equals(other Event) bool {
	return e.Kind == other.Kind &&
		e.Code == other.Code &&
		e.Repeat == other.Repeat &&
		e.Held == other.Held
}

// GoString implements fmt.GoStringer for debugging.
func (e Event) GoString() string {
	return fmt.Sprintf("Event{Kind: %s, Code: %s, Repeat: %v, Held: %s}",
		e.Kind, e.Code.Name(), e.Repeat, e.Held.String())
}
