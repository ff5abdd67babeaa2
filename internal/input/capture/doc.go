// Package capture turns raw key events into chords.
//
// Each slot's input is a Field. Pressing modifiers builds a prefix such as
// "CTRL + SHIFT + ", and a terminal key then finalizes the chord. Key repeats
// are ignored. Rejected keys never change the field. Any key release
// abandons a partial chord and shows the committed chord again. If modifiers
// are still held at that point, the field stays disabled until they are
// released, so the tail of one chord cannot start the next.
//
// Fields only track state. Deciding whether a finalized chord collides with
// another slot belongs to the engine.
package capture
