package hotkey

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/chordboard/internal/input/key"
)

// Identifier is the OS-level hotkey identifier for a chord.
type Identifier uint32

// IdentifierFor derives the identifier for a chord: the key code in the low
// 16 bits and the OS modifier bits above it. Key codes are 16-bit, so the
// mapping is injective.
func IdentifierFor(c key.Chord) Identifier {
	code, mods := c.Persisted()
	return Identifier(uint32(code) | uint32(mods)<<16)
}

// Chord reverses IdentifierFor.
func (id Identifier) Chord() key.Chord {
	return key.FromPersisted(uint16(id&0xFFFF), uint16(id>>16))
}

// String returns the identifier in hex.
func (id Identifier) String() string {
	return fmt.Sprintf("0x%06X", uint32(id))
}

// Binding pairs a live OS registration with the slot it serves.
type Binding struct {
	ID    Identifier
	Slot  int
	Chord key.Chord

	// Token identifies this particular registration. Events from the OS
	// carry it so that an event queued before an unregister is recognised
	// as stale even if the same identifier was registered again.
	Token uuid.UUID
}

// Assignment is a slot's configured chord, used to (re)register in bulk.
type Assignment struct {
	Slot  int
	Chord key.Chord
}

// Fire is a hotkey press reported by a Backend.
type Fire struct {
	ID    Identifier
	Token uuid.UUID
}

// Backend performs the OS-level registration. Implementations deliver
// presses as Fire values on their own channel; the registry never reads it.
type Backend interface {
	// Register asks the OS for a system-wide hotkey.
	Register(id Identifier, chord key.Chord, token uuid.UUID) error

	// Unregister releases a hotkey. Unknown identifiers are not an error.
	Unregister(id Identifier) error
}
