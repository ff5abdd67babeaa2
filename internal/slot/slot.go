// Package slot holds the ordered command slots of the active profile.
package slot

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/chordboard/internal/hotkey"
	"github.com/dshills/chordboard/internal/input/key"
)

// DefaultCount is the number of slots created with a new profile.
const DefaultCount = 36

// Store errors
var (
	ErrNoSlot         = errors.New("no such slot")
	ErrBadOrdinals    = errors.New("slot ordinals must run 1..N")
	ErrDuplicateChord = errors.New("chord assigned to more than one slot")
)

// Slot is one command unit within a profile.
type Slot struct {
	// Ordinal is the stable 1-based identity of the slot.
	Ordinal int

	// Chord is the bound chord; the zero chord means unbound.
	Chord key.Chord

	// Label is the display name.
	Label string

	// Payload is an opaque reference, in practice a sound file path.
	Payload string
}

// IsEmpty returns true if the slot has no chord, label or payload.
func (s Slot) IsEmpty() bool {
	return s.Chord.IsZero() && s.Label == "" && s.Payload == ""
}

// New returns n empty slots numbered 1..n.
func New(n int) []Slot {
	slots := make([]Slot, n)
	for i := range slots {
		slots[i].Ordinal = i + 1
	}
	return slots
}

// DuplicateError lists every chord held by more than one slot.
type DuplicateError struct {
	// Chords maps each duplicated chord to the ordinals holding it.
	Chords map[key.Chord][]int
}

// Error implements error.
func (e *DuplicateError) Error() string {
	chords := make([]key.Chord, 0, len(e.Chords))
	for c := range e.Chords {
		chords = append(chords, c)
	}
	sort.Slice(chords, func(i, j int) bool {
		return e.Chords[chords[i]][0] < e.Chords[chords[j]][0]
	})

	parts := make([]string, 0, len(chords))
	for _, c := range chords {
		parts = append(parts, fmt.Sprintf("%q in slots %v", c, e.Chords[c]))
	}
	return ErrDuplicateChord.Error() + ": " + strings.Join(parts, "; ")
}

// Is reports ErrDuplicateChord as matching.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicateChord
}

// Store is the ordered slot collection of one profile.
// Like the rest of the engine state it is owned by the event loop.
type Store struct {
	profileID int64
	slots     []Slot
}

// NewStore wraps a profile's slots. Ordinals must be exactly 1..len(slots),
// in any order; the store keeps them sorted.
func NewStore(profileID int64, slots []Slot) (*Store, error) {
	sorted := make([]Slot, len(slots))
	copy(sorted, slots)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Ordinal < sorted[j].Ordinal })

	for i, s := range sorted {
		if s.Ordinal != i+1 {
			return nil, fmt.Errorf("%w: got %d at position %d", ErrBadOrdinals, s.Ordinal, i+1)
		}
	}
	return &Store{profileID: profileID, slots: sorted}, nil
}

// ProfileID returns the owning profile.
func (s *Store) ProfileID() int64 { return s.profileID }

// Len returns the number of slots.
func (s *Store) Len() int { return len(s.slots) }

// Get returns a copy of a slot.
func (s *Store) Get(ordinal int) (Slot, error) {
	p, err := s.at(ordinal)
	if err != nil {
		return Slot{}, err
	}
	return *p, nil
}

// Slots returns a copy of every slot in ordinal order.
func (s *Store) Slots() []Slot {
	out := make([]Slot, len(s.slots))
	copy(out, s.slots)
	return out
}

// Chord returns a slot's chord.
func (s *Store) Chord(ordinal int) (key.Chord, error) {
	p, err := s.at(ordinal)
	if err != nil {
		return key.Chord{}, err
	}
	return p.Chord, nil
}

// SetChord replaces a slot's chord. Label and payload are untouched.
func (s *Store) SetChord(ordinal int, c key.Chord) error {
	p, err := s.at(ordinal)
	if err != nil {
		return err
	}
	p.Chord = c
	return nil
}

// SetLabel replaces a slot's label.
func (s *Store) SetLabel(ordinal int, label string) error {
	p, err := s.at(ordinal)
	if err != nil {
		return err
	}
	p.Label = label
	return nil
}

// SetPayload replaces a slot's payload.
func (s *Store) SetPayload(ordinal int, payload string) error {
	p, err := s.at(ordinal)
	if err != nil {
		return err
	}
	p.Payload = payload
	return nil
}

// Clear wipes a slot's label and payload. The chord stays bound.
func (s *Store) Clear(ordinal int) error {
	p, err := s.at(ordinal)
	if err != nil {
		return err
	}
	p.Label = ""
	p.Payload = ""
	return nil
}

// ClearAll wipes every label and payload.
func (s *Store) ClearAll() {
	for i := range s.slots {
		s.slots[i].Label = ""
		s.slots[i].Payload = ""
	}
}

// FindChord returns, in ordinal order, every slot other than exclude that
// holds c. The zero chord never matches.
func (s *Store) FindChord(c key.Chord, exclude int) []int {
	if c.IsZero() {
		return nil
	}
	var out []int
	for _, sl := range s.slots {
		if sl.Ordinal != exclude && sl.Chord == c {
			out = append(out, sl.Ordinal)
		}
	}
	return out
}

// Assignments returns every slot's chord for bulk registration.
func (s *Store) Assignments() []hotkey.Assignment {
	out := make([]hotkey.Assignment, len(s.slots))
	for i, sl := range s.slots {
		out[i] = hotkey.Assignment{Slot: sl.Ordinal, Chord: sl.Chord}
	}
	return out
}

// Check verifies that no chord is held by more than one slot.
func (s *Store) Check() error {
	holders := make(map[key.Chord][]int)
	for _, sl := range s.slots {
		if sl.Chord.IsZero() {
			continue
		}
		holders[sl.Chord] = append(holders[sl.Chord], sl.Ordinal)
	}

	dups := make(map[key.Chord][]int)
	for c, ords := range holders {
		if len(ords) > 1 {
			dups[c] = ords
		}
	}
	if len(dups) == 0 {
		return nil
	}
	return &DuplicateError{Chords: dups}
}

func (s *Store) at(ordinal int) (*Slot, error) {
	if ordinal < 1 || ordinal > len(s.slots) {
		return nil, fmt.Errorf("%w: %d", ErrNoSlot, ordinal)
	}
	return &s.slots[ordinal-1], nil
}
