package key

import (
	"fmt"
	"strings"
)

// Code identifies a physical key using Windows virtual-key numbering.
// The numbering doubles as the persisted key code and as the low half
// of an OS hotkey identifier, so every value fits in 16 bits.
type Code uint16

const (
	// CodeNone represents no key.
	CodeNone Code = 0

	CodeBackspace Code = 0x08
	CodeTab       Code = 0x09
	CodeEnter     Code = 0x0D
	CodeShift     Code = 0x10
	CodeControl   Code = 0x11
	CodeAlt       Code = 0x12
	CodePause     Code = 0x13
	CodeCapsLock  Code = 0x14
	CodeEscape    Code = 0x1B
	CodeSpace     Code = 0x20
	CodePageUp    Code = 0x21
	CodePageDown  Code = 0x22
	CodeEnd       Code = 0x23
	CodeHome      Code = 0x24
	CodeLeft      Code = 0x25
	CodeUp        Code = 0x26
	CodeRight     Code = 0x27
	CodeDown      Code = 0x28
	CodePrint     Code = 0x2C
	CodeInsert    Code = 0x2D
	CodeDelete    Code = 0x2E

	// Digit row: Code0 + n for n in 0..9.
	Code0 Code = 0x30
	Code9 Code = 0x39

	// Letters: CodeA + n for n in 0..25.
	CodeA Code = 0x41
	CodeZ Code = 0x5A

	CodeLeftWin  Code = 0x5B
	CodeRightWin Code = 0x5C
	CodeApps     Code = 0x5D

	// Keypad digits: CodeNumPad0 + n for n in 0..9.
	CodeNumPad0  Code = 0x60
	CodeNumPad9  Code = 0x69
	CodeMultiply Code = 0x6A
	CodeAdd      Code = 0x6B
	CodeSubtract Code = 0x6D
	CodeDecimal  Code = 0x6E
	CodeDivide   Code = 0x6F

	// Function keys: CodeF1 + n for n in 0..23.
	CodeF1  Code = 0x70
	CodeF12 Code = 0x7B
	CodeF24 Code = 0x87

	CodeNumLock    Code = 0x90
	CodeScrollLock Code = 0x91

	CodeLeftShift    Code = 0xA0
	CodeRightShift   Code = 0xA1
	CodeLeftControl  Code = 0xA2
	CodeRightControl Code = 0xA3
	CodeLeftAlt      Code = 0xA4
	CodeRightAlt     Code = 0xA5

	CodeSemicolon    Code = 0xBA
	CodeEquals       Code = 0xBB
	CodeComma        Code = 0xBC
	CodeMinus        Code = 0xBD
	CodePeriod       Code = 0xBE
	CodeSlash        Code = 0xBF
	CodeBacktick     Code = 0xC0
	CodeOpenBracket  Code = 0xDB
	CodeBackslash    Code = 0xDC
	CodeCloseBracket Code = 0xDD
	CodeQuote        Code = 0xDE
)

// IsDigit returns true for the digit row (not the keypad).
func (c Code) IsDigit() bool {
	return c >= Code0 && c <= Code9
}

// IsLetter returns true for A-Z.
func (c Code) IsLetter() bool {
	return c >= CodeA && c <= CodeZ
}

// IsFunctionKey returns true for F1-F24.
func (c Code) IsFunctionKey() bool {
	return c >= CodeF1 && c <= CodeF24
}

// IsNumPad returns true for keypad digits.
func (c Code) IsNumPad() bool {
	return c >= CodeNumPad0 && c <= CodeNumPad9
}

// namedCodes holds the platform names of keys that are neither letters,
// digits, keypad digits nor function keys.
var namedCodes = map[Code]string{
	CodeBackspace:    "Back",
	CodeTab:          "Tab",
	CodeEnter:        "Return",
	CodeShift:        "Shift",
	CodeControl:      "Control",
	CodeAlt:          "Alt",
	CodePause:        "Pause",
	CodeCapsLock:     "CapsLock",
	CodeEscape:       "Escape",
	CodeSpace:        "Space",
	CodePageUp:       "PageUp",
	CodePageDown:     "PageDown",
	CodeEnd:          "End",
	CodeHome:         "Home",
	CodeLeft:         "Left",
	CodeUp:           "Up",
	CodeRight:        "Right",
	CodeDown:         "Down",
	CodePrint:        "PrintScreen",
	CodeInsert:       "Insert",
	CodeDelete:       "Delete",
	CodeLeftWin:      "LWin",
	CodeRightWin:     "RWin",
	CodeApps:         "Apps",
	CodeMultiply:     "Multiply",
	CodeAdd:          "Add",
	CodeSubtract:     "Subtract",
	CodeDecimal:      "Decimal",
	CodeDivide:       "Divide",
	CodeNumLock:      "NumLock",
	CodeScrollLock:   "Scroll",
	CodeLeftShift:    "LeftShift",
	CodeRightShift:   "RightShift",
	CodeLeftControl:  "LeftCtrl",
	CodeRightControl: "RightCtrl",
	CodeLeftAlt:      "LeftAlt",
	CodeRightAlt:     "RightAlt",
	CodeSemicolon:    "OemSemicolon",
	CodeEquals:       "OemPlus",
	CodeComma:        "OemComma",
	CodeMinus:        "OemMinus",
	CodePeriod:       "OemPeriod",
	CodeSlash:        "OemQuestion",
	CodeBacktick:     "OemTilde",
	CodeOpenBracket:  "OemOpenBrackets",
	CodeBackslash:    "OemPipe",
	CodeCloseBracket: "OemCloseBrackets",
	CodeQuote:        "OemQuotes",
}

// Name returns the platform's textual name for the key.
// Digits are named "D0".."D9" like the platform does; use TokenFor for the
// glyph shown in a chord.
func (c Code) Name() string {
	switch {
	case c == CodeNone:
		return "None"
	case c.IsLetter():
		return string(rune('A' + (c - CodeA)))
	case c.IsDigit():
		return fmt.Sprintf("D%d", c-Code0)
	case c.IsNumPad():
		return fmt.Sprintf("NumPad%d", c-CodeNumPad0)
	case c.IsFunctionKey():
		return fmt.Sprintf("F%d", c-CodeF1+1)
	}
	if name, ok := namedCodes[c]; ok {
		return name
	}
	return fmt.Sprintf("Key(0x%02X)", uint16(c))
}

// String implements fmt.Stringer.
func (c Code) String() string {
	return c.Name()
}

// codeNameMap maps lowercase platform names back to codes.
var codeNameMap = func() map[string]Code {
	m := make(map[string]Code, len(namedCodes)+80)
	for c, name := range namedCodes {
		m[strings.ToLower(name)] = c
	}
	for c := CodeA; c <= CodeZ; c++ {
		m[strings.ToLower(c.Name())] = c
	}
	for c := Code0; c <= Code9; c++ {
		m[strings.ToLower(c.Name())] = c
	}
	for c := CodeNumPad0; c <= CodeNumPad9; c++ {
		m[strings.ToLower(c.Name())] = c
	}
	for c := CodeF1; c <= CodeF24; c++ {
		m[strings.ToLower(c.Name())] = c
	}
	return m
}()

// CodeFromName returns the Code for a platform key name (case-insensitive).
// Returns CodeNone if the name is not recognized.
func CodeFromName(name string) Code {
	if c, ok := codeNameMap[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c
	}
	return CodeNone
}
