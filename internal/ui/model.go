package ui

import (
	"github.com/dshills/chordboard/internal/event"
)

// Row is one slot line of the board.
type Row struct {
	event.SlotView

	// Capture is the text of a chord being typed, shown instead of Chord
	// while Building.
	Capture  string
	Building bool

	// Armed is set while the slot waits for a registered chord.
	Armed bool
}

// armedText replaces the chord column of an armed slot.
const armedText = "press a chord..."

// Display returns the chord column text.
func (r Row) Display() string {
	switch {
	case r.Armed:
		return armedText
	case r.Building:
		return r.Capture
	}
	return r.Chord
}

// Model is the state the board draws. It has no locking of its own.
type Model struct {
	ProfileID int64
	Active    bool
	Status    string

	rows  []Row
	focus int
}

// NewModel builds a model from a slot snapshot. Focus starts on the first
// slot.
func NewModel(profileID int64, active bool, views []event.SlotView) *Model {
	m := &Model{ProfileID: profileID, Active: active}
	m.SetSlots(views)
	return m
}

// SetSlots replaces the slot rows. A chord being typed survives the update.
func (m *Model) SetSlots(views []event.SlotView) {
	prev := make(map[int]Row, len(m.rows))
	for _, r := range m.rows {
		prev[r.Ordinal] = r
	}

	m.rows = make([]Row, len(views))
	for i, v := range views {
		m.rows[i] = Row{SlotView: v}
		if p, ok := prev[v.Ordinal]; ok {
			m.rows[i].Armed = p.Armed
			if p.Building {
				m.rows[i].Capture = p.Capture
				m.rows[i].Building = true
			}
		}
	}
	if m.focus >= len(m.rows) {
		m.focus = max(len(m.rows)-1, 0)
	}
}

// SetCapture records the capture state of a slot.
func (m *Model) SetCapture(ordinal int, text string, building, armed bool) {
	if i := m.index(ordinal); i >= 0 {
		m.rows[i].Capture = text
		m.rows[i].Building = building
		m.rows[i].Armed = armed
	}
}

// Armed returns the ordinal of the armed slot, or 0.
func (m Model) Armed() int {
	for _, r := range m.rows {
		if r.Armed {
			return r.Ordinal
		}
	}
	return 0
}

// SetChord records a committed chord and ends any capture on the slot.
func (m *Model) SetChord(ordinal int, chord string) {
	if i := m.index(ordinal); i >= 0 {
		m.rows[i].Chord = chord
		m.rows[i].Capture = ""
		m.rows[i].Building = false
		m.rows[i].Armed = false
	}
}

// Rows returns the slot rows in ordinal order.
func (m Model) Rows() []Row {
	return m.rows
}

// Focus returns the index of the focused row, or -1 for an empty board.
func (m Model) Focus() int {
	if len(m.rows) == 0 {
		return -1
	}
	return m.focus
}

// Focused returns the ordinal of the focused slot, or 0.
func (m Model) Focused() int {
	if len(m.rows) == 0 {
		return 0
	}
	return m.rows[m.focus].Ordinal
}

// Move shifts focus by delta rows, wrapping at either end. It returns the
// ordinal that lost focus, or 0 if focus did not change.
func (m *Model) Move(delta int) int {
	n := len(m.rows)
	if n < 2 || delta == 0 {
		return 0
	}
	prev := m.rows[m.focus].Ordinal
	m.focus = ((m.focus+delta)%n + n) % n
	return prev
}

func (m Model) index(ordinal int) int {
	for i, r := range m.rows {
		if r.Ordinal == ordinal {
			return i
		}
	}
	return -1
}
