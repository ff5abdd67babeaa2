package hotkey

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dshills/chordboard/internal/input/key"
)

// FireFunc is invoked when a bound chord fires.
type FireFunc func(ctx context.Context, b Binding)

// InterceptFunc runs before FireFunc. Returning true consumes the event.
type InterceptFunc func(ctx context.Context, b Binding) bool

// Registry owns every OS hotkey registration made by the process and routes
// presses back to the slot that owns them.
//
// A Registry is not safe for concurrent use. It is driven from the single
// event loop goroutine, which is also where Dispatch runs.
type Registry struct {
	backend   Backend
	log       logrus.FieldLogger
	byID      map[Identifier]*Binding
	bySlot    map[int]*Binding
	active    bool
	closed    bool
	onFire    FireFunc
	intercept InterceptFunc
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Registry) {
		r.log = l
	}
}

// WithActive sets the initial active state (default true).
func WithActive(active bool) Option {
	return func(r *Registry) {
		r.active = active
	}
}

// NewRegistry creates a registry on top of an OS backend.
func NewRegistry(backend Backend, opts ...Option) *Registry {
	r := &Registry{
		backend: backend,
		log:     logrus.StandardLogger(),
		byID:    make(map[Identifier]*Binding),
		bySlot:  make(map[int]*Binding),
		active:  true,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithField("component", "hotkey")
	return r
}

// OnFire sets the callback for fired bindings.
func (r *Registry) OnFire(fn FireFunc) {
	r.onFire = fn
}

// SetInterceptor sets a hook consulted before the fire callback.
func (r *Registry) SetInterceptor(fn InterceptFunc) {
	r.intercept = fn
}

// IsActive returns true if registrations are currently made with the OS.
func (r *Registry) IsActive() bool {
	return r.active
}

// Register binds a slot's chord system-wide. While the registry is inactive
// it does nothing and returns (nil, nil). Registering the chord a slot
// already holds is a no-op. A slot holding a different chord is
// unregistered first.
func (r *Registry) Register(slot int, chord key.Chord) (*Binding, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if !chord.Valid() {
		return nil, fmt.Errorf("%w: slot %d: %q", ErrInvalidChord, slot, chord)
	}
	if !r.active {
		return nil, nil
	}

	id := IdentifierFor(chord)
	if b, ok := r.byID[id]; ok {
		if b.Slot == slot {
			return b, nil
		}
		return nil, fmt.Errorf("%w: %q held by slot %d", ErrIdentifierInUse, chord, b.Slot)
	}
	if err := r.Unregister(slot); err != nil {
		return nil, err
	}

	b := &Binding{ID: id, Slot: slot, Chord: chord, Token: uuid.New()}
	if err := r.backend.Register(id, chord, b.Token); err != nil {
		cerr := &ConflictError{Slot: slot, Chord: chord, Err: err}
		r.log.WithFields(logrus.Fields{
			"slot":  slot,
			"chord": chord.String(),
		}).WithError(err).Warn("hotkey registration refused")
		return nil, cerr
	}

	r.byID[id] = b
	r.bySlot[slot] = b
	r.log.WithFields(logrus.Fields{
		"slot":  slot,
		"chord": chord.String(),
		"id":    id.String(),
	}).Debug("hotkey registered")
	return b, nil
}

// Unregister releases a slot's registration. Slots without one are a no-op.
func (r *Registry) Unregister(slot int) error {
	b, ok := r.bySlot[slot]
	if !ok {
		return nil
	}
	delete(r.bySlot, slot)
	delete(r.byID, b.ID)

	if err := r.backend.Unregister(b.ID); err != nil {
		r.log.WithField("slot", slot).WithError(err).Warn("hotkey unregister failed")
		return fmt.Errorf("unregister slot %d: %w", slot, err)
	}
	r.log.WithFields(logrus.Fields{
		"slot":  slot,
		"chord": b.Chord.String(),
	}).Debug("hotkey unregistered")
	return nil
}

// UnregisterAll releases every registration.
func (r *Registry) UnregisterAll() error {
	var errs []error
	for _, slot := range r.slots() {
		if err := r.Unregister(slot); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetActive switches registration on or off. Turning it off releases every
// registration. Turning it on registers each assignment with a chord;
// slots that are already registered are left alone. Registration failures
// are joined into the returned error and do not stop the others.
func (r *Registry) SetActive(active bool, assignments []Assignment) error {
	if r.closed {
		return ErrClosed
	}
	if !active {
		r.active = false
		return r.UnregisterAll()
	}

	r.active = true
	var errs []error
	for _, a := range assignments {
		if a.Chord.IsZero() {
			continue
		}
		if _, err := r.Register(a.Slot, a.Chord); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dispatch routes a press of id. Unknown identifiers are dropped.
func (r *Registry) Dispatch(ctx context.Context, id Identifier) {
	b, ok := r.byID[id]
	if !ok {
		r.log.WithField("id", id.String()).Debug("dropping event for unknown hotkey")
		return
	}
	r.fire(ctx, *b)
}

// DispatchEvent routes a press reported by the backend. Events whose token
// does not match the live registration are stale and dropped.
func (r *Registry) DispatchEvent(ctx context.Context, ev Fire) {
	b, ok := r.byID[ev.ID]
	if !ok || b.Token != ev.Token {
		r.log.WithField("id", ev.ID.String()).Debug("dropping stale hotkey event")
		return
	}
	r.fire(ctx, *b)
}

func (r *Registry) fire(ctx context.Context, b Binding) {
	if r.intercept != nil && r.intercept(ctx, b) {
		return
	}
	if r.onFire != nil {
		r.onFire(ctx, b)
	}
}

// Lookup returns the binding for an identifier.
func (r *Registry) Lookup(id Identifier) (Binding, bool) {
	b, ok := r.byID[id]
	if !ok {
		return Binding{}, false
	}
	return *b, true
}

// BindingFor returns the binding of a slot.
func (r *Registry) BindingFor(slot int) (Binding, bool) {
	b, ok := r.bySlot[slot]
	if !ok {
		return Binding{}, false
	}
	return *b, true
}

// Bindings returns every live binding ordered by slot.
func (r *Registry) Bindings() []Binding {
	out := make([]Binding, 0, len(r.bySlot))
	for _, slot := range r.slots() {
		out = append(out, *r.bySlot[slot])
	}
	return out
}

// Len returns the number of live bindings.
func (r *Registry) Len() int {
	return len(r.byID)
}

// Close releases every registration. The registry cannot be used afterwards.
func (r *Registry) Close() error {
	if r.closed {
		return nil
	}
	err := r.UnregisterAll()
	r.closed = true
	r.active = false
	return err
}

func (r *Registry) slots() []int {
	slots := make([]int, 0, len(r.bySlot))
	for slot := range r.bySlot {
		slots = append(slots, slot)
	}
	sort.Ints(slots)
	return slots
}
