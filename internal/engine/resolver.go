package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dshills/chordboard/internal/hotkey"
	"github.com/dshills/chordboard/internal/input/key"
	"github.com/dshills/chordboard/internal/slot"
)

// Outcome describes what an assignment changed.
type Outcome struct {
	Target int
	Chord  key.Chord

	// Partner is the slot that held Chord before, or 0 when there was no
	// collision. It now holds PartnerChord, the target's previous chord.
	Partner      int
	PartnerChord key.Chord

	// Conflicts lists registrations the OS refused. The slots keep their
	// chords but stay inert.
	Conflicts []*hotkey.ConflictError
}

// Swapped returns true if the assignment exchanged chords with another slot.
func (o Outcome) Swapped() bool {
	return o.Partner != 0
}

// Changed returns the ordinals whose chord changed.
func (o Outcome) Changed() []int {
	if o.Swapped() {
		return []int{o.Target, o.Partner}
	}
	return []int{o.Target}
}

// Resolver assigns finalized chords to slots while keeping every chord on
// at most one slot. A chord already held by another slot is swapped rather
// than duplicated.
type Resolver struct {
	store *slot.Store
	reg   *hotkey.Registry
	repo  Repository
	log   logrus.FieldLogger
}

// NewResolver creates a resolver over a profile's store.
func NewResolver(store *slot.Store, reg *hotkey.Registry, repo Repository, log logrus.FieldLogger) *Resolver {
	return &Resolver{
		store: store,
		reg:   reg,
		repo:  repo,
		log:   log,
	}
}

// Assign gives chord c to slot target.
//
// With no collision the target is unregistered, updated, registered and
// saved. When another slot holds c, both slots are unregistered before
// either is registered again, the other slot receives the target's old
// chord, and both are saved together. Labels and payloads never move.
//
// Registration refusals are reported in Outcome.Conflicts. A repository
// failure is returned as a *PersistenceError without undoing anything. If
// more than one other slot held c the first is swapped and an
// *InvariantError is returned as well.
func (r *Resolver) Assign(ctx context.Context, target int, c key.Chord) (Outcome, error) {
	if !c.Valid() {
		return Outcome{}, fmt.Errorf("%w: %q", ErrInvalidChord, c)
	}
	old, err := r.store.Chord(target)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Target: target, Chord: c}
	holders := r.store.FindChord(c, target)
	if len(holders) == 0 {
		return out, r.assignSingle(ctx, &out)
	}

	out.Partner = holders[0]
	out.PartnerChord = old
	var errs []error
	if err := r.swap(ctx, &out); err != nil {
		errs = append(errs, err)
	}
	if len(holders) > 1 {
		ierr := &InvariantError{Chord: c, Slots: holders}
		r.log.WithFields(logrus.Fields{
			"chord": c.String(),
			"slots": holders,
		}).Error("chord held by more than one slot")
		errs = append(errs, ierr)
	}
	return out, errors.Join(errs...)
}

func (r *Resolver) assignSingle(ctx context.Context, out *Outcome) error {
	r.unregister(out.Target)
	if err := r.store.SetChord(out.Target, out.Chord); err != nil {
		return err
	}
	if err := r.register(out, out.Target, out.Chord); err != nil {
		return err
	}

	s, err := r.store.Get(out.Target)
	if err != nil {
		return err
	}
	if err := r.repo.SaveSlot(ctx, r.store.ProfileID(), s); err != nil {
		return &PersistenceError{Op: "save", Slots: []int{out.Target}, Err: err}
	}

	r.log.WithFields(logrus.Fields{
		"slot":  out.Target,
		"chord": out.Chord.String(),
	}).Info("chord assigned")
	return nil
}

func (r *Resolver) swap(ctx context.Context, out *Outcome) error {
	// Both releases happen before either registration so the identifier is
	// never claimed by two slots.
	r.unregister(out.Partner)
	r.unregister(out.Target)

	if err := r.store.SetChord(out.Target, out.Chord); err != nil {
		return err
	}
	if err := r.store.SetChord(out.Partner, out.PartnerChord); err != nil {
		return err
	}

	if err := r.register(out, out.Target, out.Chord); err != nil {
		return err
	}
	if !out.PartnerChord.IsZero() {
		if err := r.register(out, out.Partner, out.PartnerChord); err != nil {
			return err
		}
	}

	ts, err := r.store.Get(out.Target)
	if err != nil {
		return err
	}
	ps, err := r.store.Get(out.Partner)
	if err != nil {
		return err
	}
	if err := r.repo.SaveSlots(ctx, r.store.ProfileID(), []slot.Slot{ts, ps}); err != nil {
		return &PersistenceError{Op: "save", Slots: out.Changed(), Err: err}
	}

	r.log.WithFields(logrus.Fields{
		"slot":          out.Target,
		"chord":         out.Chord.String(),
		"partner":       out.Partner,
		"partner_chord": out.PartnerChord.String(),
	}).Info("chords swapped")
	return nil
}

// unregister releases a slot's OS binding. Failures are logged by the
// registry and otherwise ignored: the binding is gone from the registry
// either way.
func (r *Resolver) unregister(ordinal int) {
	_ = r.reg.Unregister(ordinal)
}

// register binds a slot, collecting OS refusals into the outcome.
func (r *Resolver) register(out *Outcome, ordinal int, c key.Chord) error {
	_, err := r.reg.Register(ordinal, c)
	if err == nil {
		return nil
	}
	var ce *hotkey.ConflictError
	if errors.As(err, &ce) {
		out.Conflicts = append(out.Conflicts, ce)
		return nil
	}
	return fmt.Errorf("register slot %d: %w", ordinal, err)
}
