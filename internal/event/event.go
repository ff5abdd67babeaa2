package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is a typed notification published on the bus.
type Event[T any] struct {
	Type     Topic
	Payload  T
	Metadata Metadata
}

// Metadata is attached to every event.
type Metadata struct {
	ID        string
	Timestamp time.Time

	// Source names the component that published the event.
	Source string
}

// NewEvent creates an event stamped with a fresh ID and the current time.
func NewEvent[T any](t Topic, payload T, source string) Event[T] {
	return Event[T]{
		Type:    t,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// EventTopic implements TopicProvider.
func (e Event[T]) EventTopic() Topic { return e.Type }

// TopicProvider is implemented by anything publishable.
type TopicProvider interface {
	EventTopic() Topic
}
