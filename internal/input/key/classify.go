package key

// Class is the role a key can play in a chord.
type Class uint8

const (
	// ClassRejected keys can never appear in a chord.
	ClassRejected Class = iota

	// ClassModifier keys build up the modifier set.
	ClassModifier

	// ClassTerminal keys complete a chord.
	ClassTerminal
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassModifier:
		return "modifier"
	case ClassTerminal:
		return "terminal"
	default:
		return "rejected"
	}
}

// Classification is the result of Classify.
type Classification struct {
	Class Class

	// Mod is set for ClassModifier.
	Mod Modifier

	// Token is the display token for ClassTerminal.
	Token string
}

// IsModifier returns true if the key is a modifier.
func (c Classification) IsModifier() bool { return c.Class == ClassModifier }

// IsTerminal returns true if the key can complete a chord.
func (c Classification) IsTerminal() bool { return c.Class == ClassTerminal }

// IsRejected returns true if the key can never appear in a chord.
func (c Classification) IsRejected() bool { return c.Class == ClassRejected }

// modifierCodes folds left/right variants onto the generic modifier.
var modifierCodes = map[Code]Modifier{
	CodeControl:      ModCtrl,
	CodeLeftControl:  ModCtrl,
	CodeRightControl: ModCtrl,
	CodeAlt:          ModAlt,
	CodeLeftAlt:      ModAlt,
	CodeRightAlt:     ModAlt,
	CodeShift:        ModShift,
	CodeLeftShift:    ModShift,
	CodeRightShift:   ModShift,
}

// rejectedCodes are never eligible, whatever the capture state.
var rejectedCodes = map[Code]bool{
	CodeNone:      true,
	CodeLeftWin:   true,
	CodeRightWin:  true,
	CodeApps:      true,
	CodeCapsLock:  true,
	CodeEscape:    true,
	CodeBackspace: true,
	CodeDelete:    true,
	CodeSpace:     true,
	CodeEnter:     true,
	CodeTab:       true,
}

// Classify reports whether a code is a modifier, a terminal key, or rejected.
// Codes without a known name are rejected.
func Classify(c Code) Classification {
	if mod, ok := modifierCodes[c]; ok {
		return Classification{Class: ClassModifier, Mod: mod}
	}
	if rejectedCodes[c] || !c.known() {
		return Classification{Class: ClassRejected}
	}
	return Classification{Class: ClassTerminal, Token: TokenFor(c)}
}

// known returns true if the code has a platform name.
func (c Code) known() bool {
	if c.IsLetter() || c.IsDigit() || c.IsNumPad() || c.IsFunctionKey() {
		return true
	}
	_, ok := namedCodes[c]
	return ok
}
