package ui

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// Terminal wraps a tcell screen. Drawing calls are serialized so bus
// handlers may request a redraw from any goroutine.
type Terminal struct {
	screen tcell.Screen
	mu     sync.Mutex
}

// NewTerminal creates a terminal on the controlling tty.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

// NewTerminalWithScreen wraps an existing screen, such as a simulation.
func NewTerminalWithScreen(s tcell.Screen) *Terminal {
	return &Terminal{screen: s}
}

// Init prepares the screen for drawing.
func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.HideCursor()
	return nil
}

// Shutdown restores the terminal. PollEvent returns nil afterwards.
func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Fini()
}

// Size returns the screen size in cells.
func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

// Clear blanks the back buffer.
func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
}

// Show flushes pending changes to the screen.
func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Show()
}

// Put writes s at (x, y), clipped to width cells, and returns the number
// of cells used. Wide graphemes take two cells.
func (t *Terminal) Put(x, y, width int, s string, style tcell.Style) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if w == 0 {
			continue
		}
		if used+w > width {
			break
		}
		runes := g.Runes()
		t.screen.SetContent(x+used, y, runes[0], runes[1:], style)
		used += w
	}
	return used
}

// Fill paints a run of width cells starting at (x, y).
func (t *Terminal) Fill(x, y, width int, r rune, style tcell.Style) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := 0; i < width; i++ {
		t.screen.SetContent(x+i, y, r, nil, style)
	}
}

// PollEvent blocks for the next screen event.
func (t *Terminal) PollEvent() tcell.Event {
	return t.screen.PollEvent()
}

// Wake interrupts PollEvent so the caller redraws. It never blocks; a full
// queue already guarantees a wakeup.
func (t *Terminal) Wake() {
	_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil))
}
