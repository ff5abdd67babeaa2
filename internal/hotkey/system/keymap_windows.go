//go:build windows

package system

import (
	xhotkey "golang.design/x/hotkey"

	"github.com/dshills/chordboard/internal/input/key"
)

var modifierMap = map[key.Modifier]xhotkey.Modifier{
	key.ModCtrl:  xhotkey.ModCtrl,
	key.ModAlt:   xhotkey.ModAlt,
	key.ModShift: xhotkey.ModShift,
}

// key.Code already uses virtual-key numbering.
func keyFor(c key.Code) (xhotkey.Key, bool) {
	if !key.Classify(c).IsTerminal() {
		return 0, false
	}
	return xhotkey.Key(c), true
}
