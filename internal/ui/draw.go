package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

const (
	ordinalWidth = 4
	chordWidth   = 24
	labelWidth   = 26
)

const helpLine = "up/down select  type a chord to bind  enter take a bound chord  del unbind  ins hotkeys on/off  esc quit"

var (
	styleNormal  = tcell.StyleDefault
	styleHeader  = tcell.StyleDefault.Bold(true)
	styleFocused = tcell.StyleDefault.Reverse(true)
	styleCapture = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleDim     = tcell.StyleDefault.Dim(true)
)

// Draw renders the model onto the terminal. Rows scroll to keep the
// focused slot visible.
func Draw(t *Terminal, m *Model) {
	t.Clear()
	width, height := t.Size()
	if width <= 0 || height < 4 {
		t.Show()
		return
	}

	state := "off"
	if m.Active {
		state = "on"
	}
	t.Put(0, 0, width, fmt.Sprintf("chordboard  profile %d  hotkeys %s", m.ProfileID, state), styleHeader)

	body := height - 3
	rows := m.Rows()
	first := 0
	if f := m.Focus(); f >= body {
		first = f - body + 1
	}
	for i := 0; i < body && first+i < len(rows); i++ {
		drawRow(t, 1+i, width, rows[first+i], first+i == m.Focus())
	}

	t.Put(0, height-2, width, m.Status, styleNormal)
	t.Put(0, height-1, width, helpLine, styleDim)
	t.Show()
}

func drawRow(t *Terminal, y, width int, r Row, focused bool) {
	base := styleNormal
	if focused {
		base = styleFocused
		t.Fill(0, y, width, ' ', base)
	}

	x := t.Put(0, y, width, fmt.Sprintf("%3d", r.Ordinal), base)
	x = max(x, ordinalWidth)

	chordStyle := base
	if r.Building || r.Armed {
		chordStyle = styleCapture
		if focused {
			chordStyle = chordStyle.Reverse(true)
		}
	}
	t.Put(x, y, min(chordWidth, width-x), r.Display(), chordStyle)
	x += chordWidth + 1
	if x >= width {
		return
	}

	t.Put(x, y, min(labelWidth, width-x), r.Label, base)
	x += labelWidth + 1
	if x >= width {
		return
	}
	t.Put(x, y, width-x, r.Payload, base.Dim(true))
}
