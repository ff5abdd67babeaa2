package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dshills/chordboard/internal/event"
	"github.com/dshills/chordboard/internal/hotkey"
	"github.com/dshills/chordboard/internal/input/capture"
	"github.com/dshills/chordboard/internal/input/key"
	"github.com/dshills/chordboard/internal/slot"
)

const source = "engine"

// Engine ties capture fields, the slot store, the swap resolver and the
// hotkey registry together for the active profile.
//
// An Engine is owned by one goroutine. Key events, OS hotkey events and
// toggles must all be delivered from it.
type Engine struct {
	reg  *hotkey.Registry
	repo Repository
	bus  *event.Bus
	log  logrus.FieldLogger

	store    *slot.Store
	resolver *Resolver
	fields   map[int]*capture.Field

	// pending is the field currently building a chord, if any. A system
	// hotkey fired while it is set finalizes that field instead of firing.
	pending *capture.Field

	// armed is a field waiting for the next chord the OS reports. Chords
	// that are registered never reach the UI, so arming is the only way
	// to type one into another slot.
	armed *capture.Field
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithBus sets the bus notifications are published on.
func WithBus(b *event.Bus) Option {
	return func(e *Engine) {
		e.bus = b
	}
}

// New creates an engine and installs its fire and redirect hooks on reg.
func New(reg *hotkey.Registry, repo Repository, opts ...Option) *Engine {
	e := &Engine{
		reg:    reg,
		repo:   repo,
		log:    logrus.StandardLogger(),
		fields: make(map[int]*capture.Field),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.bus == nil {
		e.bus = event.NewBus()
	}
	e.log = e.log.WithField("component", source)

	reg.SetInterceptor(e.redirect)
	reg.OnFire(e.fire)
	return e
}

// Bus returns the notification bus.
func (e *Engine) Bus() *event.Bus {
	return e.bus
}

// Registry returns the hotkey registry.
func (e *Engine) Registry() *hotkey.Registry {
	return e.reg
}

// ProfileID returns the loaded profile, or 0.
func (e *Engine) ProfileID() int64 {
	if e.store == nil {
		return 0
	}
	return e.store.ProfileID()
}

// LoadProfile releases the current profile's bindings and makes profileID
// the active profile, registering its chords if hotkeys are active.
// Registration refusals are published and do not fail the load.
func (e *Engine) LoadProfile(ctx context.Context, profileID int64) error {
	slots, err := e.repo.LoadSlots(ctx, profileID)
	if err != nil {
		return fmt.Errorf("load profile %d: %w", profileID, err)
	}
	store, err := slot.NewStore(profileID, slots)
	if err != nil {
		return fmt.Errorf("load profile %d: %w", profileID, err)
	}

	if err := e.reg.UnregisterAll(); err != nil {
		e.log.WithError(err).Warn("releasing previous profile")
	}

	e.store = store
	e.resolver = NewResolver(store, e.reg, e.repo, e.log)
	e.pending = nil
	e.armed = nil
	e.fields = make(map[int]*capture.Field, store.Len())
	for _, s := range store.Slots() {
		e.fields[s.Ordinal] = capture.NewField(s.Ordinal, s.Chord)
	}

	var dup *slot.DuplicateError
	if err := store.Check(); errors.As(err, &dup) {
		e.log.WithError(err).Error("profile holds duplicate chords")
		for c, ords := range dup.Chords {
			publish(ctx, e, event.TopicInvariantViolation, event.InvariantViolation{Chord: c, Slots: ords})
		}
	}

	if e.reg.IsActive() {
		e.reportConflicts(ctx, e.reg.SetActive(true, store.Assignments()))
	}

	e.log.WithFields(logrus.Fields{
		"profile":  profileID,
		"slots":    store.Len(),
		"bindings": e.reg.Len(),
	}).Info("profile loaded")
	publish(ctx, e, event.TopicProfileLoaded, event.ProfileLoaded{ProfileID: profileID, Slots: store.Len()})
	e.publishSlots(ctx)
	return nil
}

// HandleKey feeds a raw key event from the UI into a slot's capture field.
// A finalized chord is assigned through the resolver.
func (e *Engine) HandleKey(ctx context.Context, ordinal int, ev key.Event) (capture.Result, error) {
	f, err := e.field(ordinal)
	if err != nil {
		return capture.Result{}, err
	}

	res := f.Handle(ev)
	e.track(f)
	if res.Outcome == capture.Finalized && e.armed == f {
		e.armed = nil
	}
	return res, e.afterCapture(ctx, f, res)
}

// FocusLost abandons any partial chord in a slot's field.
func (e *Engine) FocusLost(ctx context.Context, ordinal int) (capture.Result, error) {
	f, err := e.field(ordinal)
	if err != nil {
		return capture.Result{}, err
	}
	res := f.FocusLost()
	e.track(f)
	if e.armed == f {
		e.armed = nil
	}
	publish(ctx, e, event.TopicCaptureChanged, event.CaptureChanged{Slot: ordinal, Text: res.Text})
	return res, nil
}

// Arm makes the next system hotkey press assign its chord to ordinal
// instead of running its action. Arming another slot, Disarm, FocusLost or
// a chord typed into the slot ends it.
func (e *Engine) Arm(ctx context.Context, ordinal int) error {
	f, err := e.field(ordinal)
	if err != nil {
		return err
	}
	e.Disarm(ctx)
	e.armed = f
	publish(ctx, e, event.TopicCaptureChanged, event.CaptureChanged{Slot: ordinal, Text: f.Text(), Armed: true})
	return nil
}

// Disarm cancels Arm. It is a no-op when no slot is armed.
func (e *Engine) Disarm(ctx context.Context) {
	f := e.armed
	if f == nil {
		return
	}
	e.armed = nil
	publish(ctx, e, event.TopicCaptureChanged, event.CaptureChanged{Slot: f.Slot(), Text: f.Text(), Building: f.Building()})
}

// Armed returns the armed slot, or 0.
func (e *Engine) Armed() int {
	if e.armed == nil {
		return 0
	}
	return e.armed.Slot()
}

// OnSystemHotkey is called by the event loop for every press reported by
// the OS backend.
func (e *Engine) OnSystemHotkey(ctx context.Context, f hotkey.Fire) {
	e.reg.DispatchEvent(ctx, f)
}

// SetActive switches global hotkeys on or off. Chords stay configured
// either way. Registration refusals are published and returned.
func (e *Engine) SetActive(ctx context.Context, active bool) error {
	var assignments []hotkey.Assignment
	if e.store != nil {
		assignments = e.store.Assignments()
	}
	err := e.reg.SetActive(active, assignments)
	e.reportConflicts(ctx, err)

	e.log.WithFields(logrus.Fields{
		"active":   active,
		"bindings": e.reg.Len(),
	}).Info("hotkeys toggled")
	publish(ctx, e, event.TopicHotkeysToggled, event.HotkeysToggled{Active: active})
	return err
}

// IsActive returns true if global hotkeys are on.
func (e *Engine) IsActive() bool {
	return e.reg.IsActive()
}

// Assign gives a chord to a slot without going through capture.
func (e *Engine) Assign(ctx context.Context, ordinal int, c key.Chord) (Outcome, error) {
	if e.store == nil {
		return Outcome{}, ErrNoProfile
	}
	out, err := e.resolver.Assign(ctx, ordinal, c)
	if out.Target == 0 {
		return out, err
	}
	e.settle(ctx, out, err)
	return out, err
}

// Unassign removes a slot's chord and releases its binding.
func (e *Engine) Unassign(ctx context.Context, ordinal int) error {
	if e.store == nil {
		return ErrNoProfile
	}
	if err := e.reg.Unregister(ordinal); err != nil {
		e.log.WithError(err).Warn("unassign")
	}
	if err := e.store.SetChord(ordinal, key.Chord{}); err != nil {
		return err
	}
	if f, ok := e.fields[ordinal]; ok {
		f.SetCommitted(key.Chord{})
	}
	return e.save(ctx, ordinal)
}

// Check runs the chord uniqueness check on the loaded profile.
func (e *Engine) Check() error {
	if e.store == nil {
		return ErrNoProfile
	}
	return e.store.Check()
}

// Slots returns a copy of the loaded profile's slots.
func (e *Engine) Slots() []slot.Slot {
	if e.store == nil {
		return nil
	}
	return e.store.Slots()
}

// Views returns the displayable state of every slot.
func (e *Engine) Views() []event.SlotView {
	slots := e.Slots()
	views := make([]event.SlotView, len(slots))
	for i, s := range slots {
		views[i] = event.SlotView{
			Ordinal: s.Ordinal,
			Chord:   s.Chord.String(),
			Label:   s.Label,
			Payload: s.Payload,
		}
	}
	return views
}

// Field returns a slot's capture field.
func (e *Engine) Field(ordinal int) (*capture.Field, bool) {
	f, ok := e.fields[ordinal]
	return f, ok
}

// Close releases every binding of the loaded profile.
func (e *Engine) Close() error {
	e.pending = nil
	e.armed = nil
	return e.reg.UnregisterAll()
}

func (e *Engine) field(ordinal int) (*capture.Field, error) {
	if e.store == nil {
		return nil, ErrNoProfile
	}
	f, ok := e.fields[ordinal]
	if !ok {
		return nil, fmt.Errorf("%w: %d", slot.ErrNoSlot, ordinal)
	}
	return f, nil
}

// track keeps pending pointing at the field that is building, if any.
func (e *Engine) track(f *capture.Field) {
	switch {
	case f.Building():
		e.pending = f
	case e.pending == f:
		e.pending = nil
	}
}

func (e *Engine) afterCapture(ctx context.Context, f *capture.Field, res capture.Result) error {
	switch res.Outcome {
	case capture.Finalized:
		out, err := e.resolver.Assign(ctx, f.Slot(), res.Chord)
		e.settle(ctx, out, err)
		return err
	case capture.Progress, capture.Reset, capture.Restored:
		publish(ctx, e, event.TopicCaptureChanged, event.CaptureChanged{
			Slot:     f.Slot(),
			Text:     res.Text,
			Building: f.Building(),
			Armed:    e.armed == f,
		})
	}
	return nil
}

// settle syncs fields with an assignment outcome and publishes it.
func (e *Engine) settle(ctx context.Context, out Outcome, err error) {
	if f, ok := e.fields[out.Target]; ok {
		f.SetCommitted(out.Chord)
	}
	if out.Swapped() {
		if f, ok := e.fields[out.Partner]; ok {
			f.SetCommitted(out.PartnerChord)
		}
	}

	for _, ce := range out.Conflicts {
		e.publishConflict(ctx, ce)
	}
	var ierr *InvariantError
	if errors.As(err, &ierr) {
		publish(ctx, e, event.TopicInvariantViolation, event.InvariantViolation{Chord: ierr.Chord, Slots: ierr.Slots})
	}
	if err != nil && !errors.Is(err, ErrInvariantViolation) {
		e.log.WithField("slot", out.Target).WithError(err).Error("assigning chord")
	}

	publish(ctx, e, event.TopicChordFinalized, event.ChordFinalized{
		Slot:    out.Target,
		Chord:   out.Chord,
		Text:    out.Chord.String(),
		Swapped: out.Partner,
	})
	e.publishSlots(ctx)
}

// redirect is the registry interceptor. A chord fired while a field is
// building is typed into that field, and a chord fired while a field is
// armed is taken by it whole. Either way its action does not run.
func (e *Engine) redirect(ctx context.Context, b hotkey.Binding) bool {
	if f := e.pending; f != nil {
		e.pending = nil
		if f.Building() {
			e.redirected(ctx, f, b, f.Redirect(b.Chord.Code))
			return true
		}
	}
	if f := e.armed; f != nil {
		e.armed = nil
		publish(ctx, e, event.TopicCaptureChanged, event.CaptureChanged{Slot: f.Slot(), Text: f.Text()})
		e.redirected(ctx, f, b, f.Finalize(b.Chord))
		return true
	}
	return false
}

func (e *Engine) redirected(ctx context.Context, f *capture.Field, b hotkey.Binding, res capture.Result) {
	e.log.WithFields(logrus.Fields{
		"slot":    f.Slot(),
		"fired":   b.Slot,
		"outcome": res.Outcome.String(),
	}).Debug("hotkey redirected into capture")
	if err := e.afterCapture(ctx, f, res); err != nil {
		e.log.WithError(err).Warn("redirected capture")
	}
}

// fire publishes a binding press for the action layer.
func (e *Engine) fire(ctx context.Context, b hotkey.Binding) {
	if e.store == nil {
		return
	}
	s, err := e.store.Get(b.Slot)
	if err != nil {
		e.log.WithError(err).Warn("fired binding has no slot")
		return
	}
	e.log.WithFields(logrus.Fields{
		"slot":  s.Ordinal,
		"chord": b.Chord.String(),
	}).Debug("binding fired")
	publish(ctx, e, event.TopicBindingFired, event.BindingFired{
		Slot:    s.Ordinal,
		Chord:   b.Chord,
		Label:   s.Label,
		Payload: s.Payload,
	})
}

func (e *Engine) save(ctx context.Context, ordinal int) error {
	s, err := e.store.Get(ordinal)
	if err != nil {
		return err
	}
	if err := e.repo.SaveSlot(ctx, e.store.ProfileID(), s); err != nil {
		return &PersistenceError{Op: "save", Slots: []int{ordinal}, Err: err}
	}
	e.publishSlots(ctx)
	return nil
}

func (e *Engine) reportConflicts(ctx context.Context, err error) {
	conflicts, rest := hotkey.Partition(err)
	for _, ce := range conflicts {
		e.publishConflict(ctx, ce)
	}
	if len(rest) > 0 {
		e.log.WithError(errors.Join(rest...)).Warn("hotkey registration failed")
	}
}

func (e *Engine) publishConflict(ctx context.Context, ce *hotkey.ConflictError) {
	publish(ctx, e, event.TopicRegistrationConflict, event.RegistrationConflict{
		Slot:   ce.Slot,
		Chord:  ce.Chord,
		Reason: ce.Reason(),
	})
}

func (e *Engine) publishSlots(ctx context.Context) {
	publish(ctx, e, event.TopicSlotsChanged, event.SlotsChanged{Slots: e.Views()})
}

func publish[T any](ctx context.Context, e *Engine, t event.Topic, payload T) {
	if err := e.bus.Publish(ctx, event.NewEvent(t, payload, source)); err != nil {
		e.log.WithError(err).WithField("topic", t.String()).Warn("publish failed")
	}
}
