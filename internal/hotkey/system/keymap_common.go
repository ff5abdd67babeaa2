//go:build darwin

package system

import (
	xhotkey "golang.design/x/hotkey"

	"github.com/dshills/chordboard/internal/input/key"
)

// commonKeys uses the library's own constants, which carry the right
// platform value for letters, digits, function keys and arrows.
var commonKeys = map[key.Code]xhotkey.Key{
	key.CodeA + 0: xhotkey.KeyA, key.CodeA + 1: xhotkey.KeyB, key.CodeA + 2: xhotkey.KeyC,
	key.CodeA + 3: xhotkey.KeyD, key.CodeA + 4: xhotkey.KeyE, key.CodeA + 5: xhotkey.KeyF,
	key.CodeA + 6: xhotkey.KeyG, key.CodeA + 7: xhotkey.KeyH, key.CodeA + 8: xhotkey.KeyI,
	key.CodeA + 9: xhotkey.KeyJ, key.CodeA + 10: xhotkey.KeyK, key.CodeA + 11: xhotkey.KeyL,
	key.CodeA + 12: xhotkey.KeyM, key.CodeA + 13: xhotkey.KeyN, key.CodeA + 14: xhotkey.KeyO,
	key.CodeA + 15: xhotkey.KeyP, key.CodeA + 16: xhotkey.KeyQ, key.CodeA + 17: xhotkey.KeyR,
	key.CodeA + 18: xhotkey.KeyS, key.CodeA + 19: xhotkey.KeyT, key.CodeA + 20: xhotkey.KeyU,
	key.CodeA + 21: xhotkey.KeyV, key.CodeA + 22: xhotkey.KeyW, key.CodeA + 23: xhotkey.KeyX,
	key.CodeA + 24: xhotkey.KeyY, key.CodeA + 25: xhotkey.KeyZ,

	key.Code0 + 0: xhotkey.Key0, key.Code0 + 1: xhotkey.Key1, key.Code0 + 2: xhotkey.Key2,
	key.Code0 + 3: xhotkey.Key3, key.Code0 + 4: xhotkey.Key4, key.Code0 + 5: xhotkey.Key5,
	key.Code0 + 6: xhotkey.Key6, key.Code0 + 7: xhotkey.Key7, key.Code0 + 8: xhotkey.Key8,
	key.Code0 + 9: xhotkey.Key9,

	key.CodeF1 + 0: xhotkey.KeyF1, key.CodeF1 + 1: xhotkey.KeyF2, key.CodeF1 + 2: xhotkey.KeyF3,
	key.CodeF1 + 3: xhotkey.KeyF4, key.CodeF1 + 4: xhotkey.KeyF5, key.CodeF1 + 5: xhotkey.KeyF6,
	key.CodeF1 + 6: xhotkey.KeyF7, key.CodeF1 + 7: xhotkey.KeyF8, key.CodeF1 + 8: xhotkey.KeyF9,
	key.CodeF1 + 9: xhotkey.KeyF10, key.CodeF1 + 10: xhotkey.KeyF11, key.CodeF1 + 11: xhotkey.KeyF12,
	key.CodeF1 + 12: xhotkey.KeyF13, key.CodeF1 + 13: xhotkey.KeyF14, key.CodeF1 + 14: xhotkey.KeyF15,
	key.CodeF1 + 15: xhotkey.KeyF16, key.CodeF1 + 16: xhotkey.KeyF17, key.CodeF1 + 17: xhotkey.KeyF18,
	key.CodeF1 + 18: xhotkey.KeyF19, key.CodeF1 + 19: xhotkey.KeyF20,

	key.CodeLeft:  xhotkey.KeyLeft,
	key.CodeRight: xhotkey.KeyRight,
	key.CodeUp:    xhotkey.KeyUp,
	key.CodeDown:  xhotkey.KeyDown,
}

func keyFor(c key.Code) (xhotkey.Key, bool) {
	if k, ok := commonKeys[c]; ok {
		return k, true
	}
	k, ok := platformKeys[c]
	return k, ok
}
