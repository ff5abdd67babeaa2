// Package hotkey maps slot chords to system-wide OS registrations.
//
// A Registry holds at most one Binding per Identifier and at most one per
// slot. The OS side sits behind the Backend interface. The real
// implementation lives in hotkey/system, and MemoryBackend serves headless
// hosts. Presses come back as Fire values that the event loop hands to
// DispatchEvent, so callbacks always run on the loop goroutine.
//
// Registration failures are reported as *ConflictError and never abort
// other registrations.
package hotkey
