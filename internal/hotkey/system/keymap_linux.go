//go:build linux

package system

import (
	"fmt"

	"github.com/jezek/xgb/xproto"

	"github.com/dshills/chordboard/internal/input/key"
)

// Alt is Mod1 on X11.
var modifierMask = map[key.Modifier]uint16{
	key.ModCtrl:  xproto.ModMaskControl,
	key.ModAlt:   xproto.ModMask1,
	key.ModShift: xproto.ModMaskShift,
}

// chordMask selects the modifier bits a chord can carry. Lock and NumLock
// are ignored when matching a press.
const chordMask = xproto.ModMaskControl | xproto.ModMask1 | xproto.ModMaskShift

// keysyms holds X11 keysyms for keys outside the letter, digit and function
// ranges. Punctuation keysyms equal their ASCII value.
var keysyms = map[key.Code]uint32{
	key.CodeMinus:        '-',
	key.CodeEquals:       '=',
	key.CodeComma:        ',',
	key.CodePeriod:       '.',
	key.CodeSlash:        '/',
	key.CodeSemicolon:    ';',
	key.CodeQuote:        '\'',
	key.CodeOpenBracket:  '[',
	key.CodeCloseBracket: ']',
	key.CodeBackslash:    '\\',
	key.CodeBacktick:     '`',
	key.CodePause:        0xff13,
	key.CodeHome:         0xff50,
	key.CodeLeft:         0xff51,
	key.CodeUp:           0xff52,
	key.CodeRight:        0xff53,
	key.CodeDown:         0xff54,
	key.CodePageUp:       0xff55,
	key.CodePageDown:     0xff56,
	key.CodeEnd:          0xff57,
	key.CodePrint:        0xff61,
	key.CodeInsert:       0xff63,
	key.CodeMultiply:     0xffaa,
	key.CodeAdd:          0xffab,
	key.CodeSubtract:     0xffad,
	key.CodeDecimal:      0xffae,
	key.CodeDivide:       0xffaf,
}

func keysymFor(c key.Code) (uint32, bool) {
	switch {
	case c.IsLetter():
		return 'a' + uint32(c-key.CodeA), true
	case c.IsDigit():
		return '0' + uint32(c-key.Code0), true
	case c.IsFunctionKey():
		return 0xffbe + uint32(c-key.CodeF1), true
	case c.IsNumPad():
		return 0xffb0 + uint32(c-key.CodeNumPad0), true
	}
	sym, ok := keysyms[c]
	return sym, ok
}

// translate maps a chord onto a keysym and an X11 modifier mask.
func translate(c key.Chord) (uint32, uint16, error) {
	sym, ok := keysymFor(c.Code)
	if !ok {
		return 0, 0, fmt.Errorf("key %s has no global hotkey mapping on this platform", c.Code.Name())
	}
	var mods uint16
	for _, m := range c.Mods.Each() {
		mods |= modifierMask[m]
	}
	return sym, mods, nil
}
