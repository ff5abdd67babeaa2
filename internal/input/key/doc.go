// Package key provides the chord codec for the hotkey engine.
//
// This package defines the fundamental types for representing chords:
//
//   - Code: a raw key code (Windows virtual-key numbering)
//   - Modifier: the modifier vocabulary (Ctrl, Alt, Shift)
//   - Chord: a modifier set plus exactly one terminal key
//   - Event: a raw key-down or key-up as delivered by a UI collaborator
//
// # Canonical Form
//
// Chords render as "MOD1 + MOD2 + KEY" with modifiers always in the order
// CTRL, ALT, SHIFT, so equal chords produce equal strings:
//
//	"CTRL + A"
//	"CTRL + SHIFT + 5"
//	"ALT + SHIFT + ["
//
// While a chord is still being captured, the same renderer produces the
// prefix alone ("CTRL + SHIFT + ").
//
// # Classification
//
// Classify sorts every code into a modifier, a terminal key, or a rejected
// key. Rejected keys (Windows keys, CapsLock, Escape, Backspace, Delete,
// Space, Enter, Tab) can never appear in a chord.
package key
