package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/chordboard/internal/input/key"
)

// Terminals report a finished key combination, never the modifier presses
// that led up to it. Translate rebuilds the sequence a keyboard would have
// produced: modifier downs in canonical order, the key itself, then the
// releases.

var namedKeys = map[tcell.Key]key.Code{
	tcell.KeyEnter:     key.CodeEnter,
	tcell.KeyBackspace: key.CodeBackspace,
	tcell.KeyTab:       key.CodeTab,
	tcell.KeyEscape:    key.CodeEscape,
	tcell.KeyInsert:    key.CodeInsert,
	tcell.KeyDelete:    key.CodeDelete,
	tcell.KeyHome:      key.CodeHome,
	tcell.KeyEnd:       key.CodeEnd,
	tcell.KeyPgUp:      key.CodePageUp,
	tcell.KeyPgDn:      key.CodePageDown,
	tcell.KeyUp:        key.CodeUp,
	tcell.KeyDown:      key.CodeDown,
	tcell.KeyLeft:      key.CodeLeft,
	tcell.KeyRight:     key.CodeRight,
	tcell.KeyPause:     key.CodePause,
	tcell.KeyPrint:     key.CodePrint,
}

var punctuation = map[rune]key.Code{
	' ':  key.CodeSpace,
	';':  key.CodeSemicolon,
	'=':  key.CodeEquals,
	',':  key.CodeComma,
	'-':  key.CodeMinus,
	'.':  key.CodePeriod,
	'/':  key.CodeSlash,
	'`':  key.CodeBacktick,
	'[':  key.CodeOpenBracket,
	'\\': key.CodeBackslash,
	']':  key.CodeCloseBracket,
	'\'': key.CodeQuote,
}

// shifted maps characters typed with Shift to their unshifted key on a US
// layout.
var shifted = map[rune]rune{
	')': '0', '!': '1', '@': '2', '#': '3', '$': '4',
	'%': '5', '^': '6', '&': '7', '*': '8', '(': '9',
	':': ';', '+': '=', '<': ',', '_': '-', '>': '.',
	'?': '/', '~': '`', '{': '[', '|': '\\', '}': ']', '"': '\'',
}

// Resolve returns the key code and modifiers of a terminal key press.
// It reports false for keys with no code.
func Resolve(ev *tcell.EventKey) (key.Code, key.Modifier, bool) {
	mods := modifiersOf(ev.Modifiers())
	k := ev.Key()

	switch {
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		return key.CodeA + key.Code(k-tcell.KeyCtrlA), mods.With(key.ModCtrl), true
	case k >= tcell.KeyF1 && k <= tcell.KeyF24:
		return key.CodeF1 + key.Code(k-tcell.KeyF1), mods, true
	case k == tcell.KeyBacktab:
		return key.CodeTab, mods.With(key.ModShift), true
	case k == tcell.KeyRune:
		code, shift, ok := runeCode(ev.Rune())
		if shift {
			mods = mods.With(key.ModShift)
		}
		return code, mods, ok
	}

	code, ok := namedKeys[k]
	return code, mods, ok
}

// Translate converts one terminal key press into raw key events.
func Translate(ev *tcell.EventKey) []key.Event {
	code, mods, ok := Resolve(ev)
	if !ok {
		return nil
	}
	return Sequence(mods, code)
}

// Sequence returns the down and up events of pressing code with mods held.
func Sequence(mods key.Modifier, code key.Code) []key.Event {
	order := mods.Each()
	events := make([]key.Event, 0, 2*len(order)+2)

	held := key.ModNone
	for _, m := range order {
		events = append(events, key.NewDown(modifierCode(m), held))
		held = held.With(m)
	}
	events = append(events, key.NewDown(code, held), key.NewUp(code, held))
	for i := len(order) - 1; i >= 0; i-- {
		held = held.Without(order[i])
		events = append(events, key.NewUp(modifierCode(order[i]), held))
	}
	return events
}

func runeCode(r rune) (code key.Code, shift bool, ok bool) {
	if base, isShifted := shifted[r]; isShifted {
		code, _, ok = runeCode(base)
		return code, true, ok
	}
	switch {
	case r >= 'a' && r <= 'z':
		return key.CodeA + key.Code(r-'a'), false, true
	case r >= 'A' && r <= 'Z':
		return key.CodeA + key.Code(r-'A'), true, true
	case r >= '0' && r <= '9':
		return key.Code0 + key.Code(r-'0'), false, true
	}
	code, ok = punctuation[r]
	return code, false, ok
}

func modifiersOf(m tcell.ModMask) key.Modifier {
	mods := key.ModNone
	if m&tcell.ModCtrl != 0 {
		mods = mods.With(key.ModCtrl)
	}
	if m&(tcell.ModAlt|tcell.ModMeta) != 0 {
		mods = mods.With(key.ModAlt)
	}
	if m&tcell.ModShift != 0 {
		mods = mods.With(key.ModShift)
	}
	return mods
}

func modifierCode(m key.Modifier) key.Code {
	switch m {
	case key.ModCtrl:
		return key.CodeControl
	case key.ModAlt:
		return key.CodeAlt
	default:
		return key.CodeShift
	}
}
