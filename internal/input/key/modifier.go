package key

import "strings"

// Modifier represents the chord modifier keys.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModCtrl indicates the Control key.
	ModCtrl Modifier = 1 << iota

	// ModAlt indicates the Alt key (Option on macOS).
	ModAlt

	// ModShift indicates the Shift key.
	ModShift
)

// MaxModifiers is the largest number of modifiers a chord may carry.
const MaxModifiers = 2

// modifierOrder is the canonical render order.
var modifierOrder = []Modifier{ModCtrl, ModAlt, ModShift}

// Has returns true if m contains the specified modifier.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// With returns a new Modifier with the specified modifier added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// Without returns a new Modifier with the specified modifier removed.
func (m Modifier) Without(mod Modifier) Modifier {
	return m &^ mod
}

// IsEmpty returns true if no modifiers are set.
func (m Modifier) IsEmpty() bool {
	return m == ModNone
}

// Count returns the number of modifiers set.
func (m Modifier) Count() int {
	n := 0
	for _, mod := range modifierOrder {
		if m.Has(mod) {
			n++
		}
	}
	return n
}

// Each returns the set modifiers in canonical order.
func (m Modifier) Each() []Modifier {
	out := make([]Modifier, 0, len(modifierOrder))
	for _, mod := range modifierOrder {
		if m.Has(mod) {
			out = append(out, mod)
		}
	}
	return out
}

// Token returns the display token of a single modifier ("CTRL").
// Returns "" for combined or empty values.
func (m Modifier) Token() string {
	switch m {
	case ModCtrl:
		return "CTRL"
	case ModAlt:
		return "ALT"
	case ModShift:
		return "SHIFT"
	default:
		return ""
	}
}

// String returns a human-readable representation like "CTRL + ALT".
func (m Modifier) String() string {
	parts := make([]string, 0, len(modifierOrder))
	for _, mod := range m.Each() {
		parts = append(parts, mod.Token())
	}
	return strings.Join(parts, Separator)
}

// OS modifier bits used by hotkey identifiers and persistence.
const (
	systemAlt   = 0x0001
	systemCtrl  = 0x0002
	systemShift = 0x0004
)

// SystemBits returns the OS-level modifier mask (Alt=1, Ctrl=2, Shift=4).
func (m Modifier) SystemBits() uint16 {
	var bits uint16
	if m.Has(ModAlt) {
		bits |= systemAlt
	}
	if m.Has(ModCtrl) {
		bits |= systemCtrl
	}
	if m.Has(ModShift) {
		bits |= systemShift
	}
	return bits
}

// ModifierFromSystemBits converts an OS-level mask back to a Modifier.
// Unknown bits are ignored.
func ModifierFromSystemBits(bits uint16) Modifier {
	var m Modifier
	if bits&systemAlt != 0 {
		m = m.With(ModAlt)
	}
	if bits&systemCtrl != 0 {
		m = m.With(ModCtrl)
	}
	if bits&systemShift != 0 {
		m = m.With(ModShift)
	}
	return m
}

// modifierNameMap maps modifier names (lowercase) to Modifier values.
var modifierNameMap = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"opt":     ModAlt,
	"shift":   ModShift,
}

// ModifierFromName returns the Modifier for a given name (case-insensitive).
// Returns ModNone if the name is not recognized.
func ModifierFromName(name string) Modifier {
	if m, ok := modifierNameMap[strings.ToLower(strings.TrimSpace(name))]; ok {
		return m
	}
	return ModNone
}
