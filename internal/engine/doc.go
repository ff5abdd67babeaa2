// Package engine coordinates chord capture, slot assignment and global
// hotkey registration for the active profile.
//
// Key events from the UI go to a slot's capture.Field. When a field
// finalizes a chord, the Resolver assigns it. If another slot already holds
// the chord, the two slots exchange chords so no chord is ever bound twice.
// Every assignment re-registers the affected bindings and saves the
// affected slots through the Repository.
//
// If a registered chord fires system-wide while a field is building, the
// press finishes that capture instead of running the slot's action.
//
// Notifications go out on an event.Bus:
//
//	chord.finalized        a capture (or Assign) committed a chord
//	capture.changed        a field's text changed without committing
//	binding.fired          a bound chord was pressed
//	registration.conflict  the OS refused a chord
//	registration.invariant more than one slot held a chord
//	slots.changed          any slot changed
//	hotkeys.toggled        global hotkeys were switched on or off
//	profile.loaded         a profile became active
package engine
