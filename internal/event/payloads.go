package event

import "github.com/dshills/chordboard/internal/input/key"

// ChordFinalized is published when a capture field commits a chord.
type ChordFinalized struct {
	Slot  int
	Chord key.Chord
	Text  string

	// Swapped is the slot that gave up the chord, or 0.
	Swapped int
}

// CaptureChanged is published whenever a field's displayed text changes
// without a finalize (progress, reset, restore), and when a field is armed
// or disarmed.
type CaptureChanged struct {
	Slot     int
	Text     string
	Building bool
	Armed    bool
}

// BindingFired is published when a bound chord is pressed outside a capture.
type BindingFired struct {
	Slot    int
	Chord   key.Chord
	Label   string
	Payload string
}

// RegistrationConflict is published when the OS refuses a chord.
type RegistrationConflict struct {
	Slot   int
	Chord  key.Chord
	Reason string
}

// InvariantViolation is published when more than one slot held a chord.
type InvariantViolation struct {
	Chord key.Chord
	Slots []int
}

// SlotView is the displayable state of one slot.
type SlotView struct {
	Ordinal int
	Chord   string
	Label   string
	Payload string
}

// SlotsChanged is published after any slot is modified.
type SlotsChanged struct {
	Slots []SlotView
}

// HotkeysToggled is published when registration is switched on or off.
type HotkeysToggled struct {
	Active bool
}

// ProfileLoaded is published after a profile becomes active.
type ProfileLoaded struct {
	ProfileID int64
	Slots     int
}
