package capture

import (
	"github.com/dshills/chordboard/internal/input/key"
)

// State is the capture state of a field.
type State uint8

const (
	// StateIdle means no chord is in progress.
	StateIdle State = iota

	// StateBuilding means at least one modifier has been pressed.
	StateBuilding
)

// String returns the state name.
func (s State) String() string {
	if s == StateBuilding {
		return "building"
	}
	return "idle"
}

// Outcome describes what a single event did to a field.
type Outcome uint8

const (
	// Ignored events were consumed without any effect (key repeats).
	Ignored Outcome = iota

	// Rejected events were not eligible in the current state.
	// The field is unchanged and the event counts as handled.
	Rejected

	// Progress means a modifier was added to the chord being built.
	Progress

	// Reset means the same modifier was pressed twice and the field
	// started over with empty text.
	Reset

	// Finalized means a terminal key completed a chord.
	Finalized

	// Restored means a partial chord was discarded and the committed
	// chord is shown again.
	Restored
)

var outcomeNames = [...]string{
	Ignored:   "ignored",
	Rejected:  "rejected",
	Progress:  "progress",
	Reset:     "reset",
	Finalized: "finalized",
	Restored:  "restored",
}

// String returns the outcome name.
func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// Result is returned by every Field transition.
type Result struct {
	Outcome Outcome

	// Chord is the finalized chord. Set only for Finalized.
	Chord key.Chord

	// Text is what the field displays after the event.
	Text string
}

// Field is the capture state machine for a single slot's input.
// A Field is not safe for concurrent use; it is owned by the event loop.
type Field struct {
	slot      int
	state     State
	mods      key.Modifier
	disabled  bool
	committed key.Chord
	text      string
}

// NewField creates an idle field for a slot showing its committed chord.
func NewField(slot int, committed key.Chord) *Field {
	return &Field{
		slot:      slot,
		committed: committed,
		text:      committed.String(),
	}
}

// Slot returns the slot ordinal the field edits.
func (f *Field) Slot() int { return f.slot }

// State returns the current capture state.
func (f *Field) State() State { return f.state }

// Building returns true while a chord is in progress.
func (f *Field) Building() bool { return f.state == StateBuilding }

// Modifiers returns the modifiers accumulated so far.
func (f *Field) Modifiers() key.Modifier { return f.mods }

// Disabled returns true while the field waits for held modifiers to settle.
func (f *Field) Disabled() bool { return f.disabled }

// Text returns the displayed text.
func (f *Field) Text() string { return f.text }

// Committed returns the chord restored when a capture is abandoned.
func (f *Field) Committed() key.Chord { return f.committed }

// SetCommitted replaces the committed chord. When the field is idle the
// displayed text follows it.
func (f *Field) SetCommitted(c key.Chord) {
	f.committed = c
	if f.state == StateIdle {
		f.text = c.String()
	}
}

// Handle feeds one raw key event through the state machine.
func (f *Field) Handle(ev key.Event) Result {
	if ev.Repeat {
		return f.result(Ignored)
	}
	if ev.IsUp() {
		return f.release(ev.Held)
	}

	cl := key.Classify(ev.Code)
	if cl.IsRejected() || f.disabled {
		return f.result(Rejected)
	}
	if cl.IsModifier() {
		return f.modifier(cl.Mod)
	}
	return f.terminal(ev.Code)
}

// Redirect finalizes the field with the terminal key of a chord that fired
// system-wide while the field was building. It is a no-op unless Building.
func (f *Field) Redirect(code key.Code) Result {
	if f.state != StateBuilding {
		return f.result(Rejected)
	}
	if !key.Classify(code).IsTerminal() {
		return f.result(Rejected)
	}
	return f.terminal(code)
}

// Finalize commits a complete chord from outside the key stream, as when
// an armed field takes a chord the OS reported whole. Invalid chords are
// rejected.
func (f *Field) Finalize(c key.Chord) Result {
	if !c.Valid() {
		return f.result(Rejected)
	}
	f.state = StateIdle
	f.mods = key.ModNone
	f.disabled = false
	f.committed = c
	f.text = c.String()

	r := f.result(Finalized)
	r.Chord = c
	return r
}

// FocusLost abandons any partial chord and restores the committed text.
func (f *Field) FocusLost() Result {
	f.disabled = false
	return f.restore()
}

func (f *Field) modifier(m key.Modifier) Result {
	if f.state == StateIdle {
		f.state = StateBuilding
		f.mods = m
		f.text = key.Render(f.mods, "")
		return f.result(Progress)
	}

	if f.mods.Count() >= key.MaxModifiers {
		return f.result(Rejected)
	}
	if f.mods.Has(m) {
		f.state = StateIdle
		f.mods = key.ModNone
		f.text = ""
		return f.result(Reset)
	}

	f.mods = f.mods.With(m)
	f.text = key.Render(f.mods, "")
	return f.result(Progress)
}

func (f *Field) terminal(code key.Code) Result {
	if f.state != StateBuilding || f.mods.IsEmpty() {
		return f.result(Rejected)
	}

	chord := key.NewChord(f.mods, code)
	f.state = StateIdle
	f.mods = key.ModNone
	f.committed = chord
	f.text = chord.String()

	r := f.result(Finalized)
	r.Chord = chord
	return r
}

// release handles any key-up. Releasing a key while other modifiers are
// still held suspends capture until they are all released.
func (f *Field) release(held key.Modifier) Result {
	f.disabled = !held.IsEmpty()
	return f.restore()
}

func (f *Field) restore() Result {
	f.state = StateIdle
	f.mods = key.ModNone
	f.text = f.committed.String()
	return f.result(Restored)
}

func (f *Field) result(o Outcome) Result {
	return Result{Outcome: o, Text: f.text}
}
