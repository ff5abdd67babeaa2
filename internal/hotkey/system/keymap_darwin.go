//go:build darwin

package system

import (
	xhotkey "golang.design/x/hotkey"

	"github.com/dshills/chordboard/internal/input/key"
)

// Alt is Option on macOS.
var modifierMap = map[key.Modifier]xhotkey.Modifier{
	key.ModCtrl:  xhotkey.ModCtrl,
	key.ModAlt:   xhotkey.ModOption,
	key.ModShift: xhotkey.ModShift,
}

// platformKeys holds ANSI virtual keycodes the library has no names for.
var platformKeys = map[key.Code]xhotkey.Key{
	key.CodeMinus:        0x1B,
	key.CodeEquals:       0x18,
	key.CodeComma:        0x2B,
	key.CodePeriod:       0x2F,
	key.CodeSlash:        0x2C,
	key.CodeSemicolon:    0x29,
	key.CodeQuote:        0x27,
	key.CodeOpenBracket:  0x21,
	key.CodeCloseBracket: 0x1E,
	key.CodeBackslash:    0x2A,
	key.CodeBacktick:     0x32,
	key.CodeHome:         0x73,
	key.CodeEnd:          0x77,
	key.CodePageUp:       0x74,
	key.CodePageDown:     0x79,
	key.CodeInsert:       0x72,
	key.CodeNumPad0 + 0:  0x52,
	key.CodeNumPad0 + 1:  0x53,
	key.CodeNumPad0 + 2:  0x54,
	key.CodeNumPad0 + 3:  0x55,
	key.CodeNumPad0 + 4:  0x56,
	key.CodeNumPad0 + 5:  0x57,
	key.CodeNumPad0 + 6:  0x58,
	key.CodeNumPad0 + 7:  0x59,
	key.CodeNumPad0 + 8:  0x5B,
	key.CodeNumPad0 + 9:  0x5C,
	key.CodeMultiply:     0x43,
	key.CodeAdd:          0x45,
	key.CodeSubtract:     0x4E,
	key.CodeDecimal:      0x41,
	key.CodeDivide:       0x4B,
}
