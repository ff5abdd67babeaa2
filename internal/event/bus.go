package event

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// HandlerFunc receives published events. The event is the value passed to
// Publish, normally an Event[T].
type HandlerFunc func(ctx context.Context, event any) error

// PanicHandler is called when a handler panics.
type PanicHandler func(err *PanicError)

// ErrorHandler is called when a handler returns an error.
type ErrorHandler func(sub Subscription, err error)

// Subscription identifies a registered handler.
type Subscription struct {
	ID      string
	Pattern Topic
}

type subscriber struct {
	Subscription
	fn HandlerFunc
}

// Stats summarises bus activity.
type Stats struct {
	EventsPublished   uint64
	HandlersExecuted  uint64
	HandlerErrors     uint64
	HandlerPanics     uint64
	ActiveSubscribers int
}

// Bus delivers events synchronously, in subscription order, on the
// publisher's goroutine. Subscribing is safe from any goroutine.
type Bus struct {
	mu   sync.RWMutex
	subs []subscriber

	onPanic PanicHandler
	onError ErrorHandler

	published atomic.Uint64
	executed  atomic.Uint64
	errors    atomic.Uint64
	panics    atomic.Uint64
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithPanicHandler sets the handler for recovered panics.
func WithPanicHandler(h PanicHandler) BusOption {
	return func(b *Bus) { b.onPanic = h }
}

// WithErrorHandler sets the handler for handler errors.
func WithErrorHandler(h ErrorHandler) BusOption {
	return func(b *Bus) { b.onError = h }
}

// NewBus creates an event bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers fn for every topic matching pattern.
func (b *Bus) Subscribe(pattern Topic, fn HandlerFunc) (Subscription, error) {
	if fn == nil {
		return Subscription{}, ErrNilHandler
	}
	if !pattern.Valid() {
		return Subscription{}, ErrInvalidTopic
	}

	sub := Subscription{ID: uuid.NewString(), Pattern: pattern}
	b.mu.Lock()
	b.subs = append(b.subs, subscriber{Subscription: sub, fn: fn})
	b.mu.Unlock()
	return sub, nil
}

// Unsubscribe removes a subscription.
func (b *Bus) Unsubscribe(sub Subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.ID == sub.ID {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// Publish delivers an event to every matching subscriber. Handler errors
// and panics are counted and reported to the configured handlers but never
// stop delivery to the remaining subscribers.
func (b *Bus) Publish(ctx context.Context, event any) error {
	tp, ok := event.(TopicProvider)
	if !ok || !tp.EventTopic().Valid() {
		return ErrInvalidEvent
	}
	t := tp.EventTopic()

	b.mu.RLock()
	matched := make([]subscriber, 0, len(b.subs))
	for _, s := range b.subs {
		if t.Matches(s.Pattern) {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	b.published.Add(1)
	for _, s := range matched {
		b.deliver(ctx, s, t, event)
	}
	return nil
}

func (b *Bus) deliver(ctx context.Context, s subscriber, t Topic, event any) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
			if b.onPanic != nil {
				b.onPanic(&PanicError{SubscriptionID: s.ID, Topic: t, Value: r})
			}
		}
	}()

	b.executed.Add(1)
	if err := s.fn(ctx, event); err != nil {
		b.errors.Add(1)
		if b.onError != nil {
			b.onError(s.Subscription, err)
		}
	}
}

// Stats returns current counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	n := len(b.subs)
	b.mu.RUnlock()
	return Stats{
		EventsPublished:   b.published.Load(),
		HandlersExecuted:  b.executed.Load(),
		HandlerErrors:     b.errors.Load(),
		HandlerPanics:     b.panics.Load(),
		ActiveSubscribers: n,
	}
}
