package ui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/chordboard/internal/engine"
	"github.com/dshills/chordboard/internal/event"
	"github.com/dshills/chordboard/internal/hotkey"
	"github.com/dshills/chordboard/internal/input/key"
	"github.com/dshills/chordboard/internal/slot"
)

type memRepo struct {
	mu    sync.Mutex
	slots map[int64][]slot.Slot
}

func (r *memRepo) LoadSlots(_ context.Context, id int64) ([]slot.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]slot.Slot(nil), r.slots[id]...), nil
}

func (r *memRepo) SaveSlot(ctx context.Context, id int64, s slot.Slot) error {
	return r.SaveSlots(ctx, id, []slot.Slot{s})
}

func (r *memRepo) SaveSlots(_ context.Context, id int64, slots []slot.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range slots {
		r.slots[id][s.Ordinal-1] = s
	}
	return nil
}

// host runs work inline under a lock, standing in for the event loop.
type host struct {
	mu  sync.Mutex
	eng *engine.Engine
	bus *event.Bus
	be  *hotkey.MemoryBackend
}

func (h *host) Do(ctx context.Context, fn func(context.Context, *engine.Engine) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(ctx, h.eng)
}

func (h *host) Bus() *event.Bus { return h.bus }

func quiet() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func newHost(t *testing.T, slots []slot.Slot) *host {
	t.Helper()
	be := hotkey.NewMemoryBackend()
	reg := hotkey.NewRegistry(be, hotkey.WithLogger(quiet()))
	bus := event.NewBus()
	repo := &memRepo{slots: map[int64][]slot.Slot{1: slots}}
	eng := engine.New(reg, repo, engine.WithLogger(quiet()), engine.WithBus(bus))
	require.NoError(t, eng.LoadProfile(context.Background(), 1))
	return &host{eng: eng, bus: bus, be: be}
}

type session struct {
	ui     *UI
	screen tcell.SimulationScreen
	host   *host
	done   chan error
}

func start(t *testing.T, slots []slot.Slot) *session {
	t.Helper()
	h := newHost(t, slots)
	screen := tcell.NewSimulationScreen("UTF-8")
	u := New(NewTerminalWithScreen(screen), h, quiet())

	s := &session{ui: u, screen: screen, host: h, done: make(chan error, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	go func() { s.done <- u.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-s.done:
		case <-time.After(5 * time.Second):
			t.Error("ui did not stop")
		}
	})

	require.Eventually(t, func() bool {
		return len(u.Model().Rows()) == len(slots)
	}, 5*time.Second, 10*time.Millisecond)
	return s
}

func (s *session) press(k tcell.Key, r rune, mod tcell.ModMask) {
	s.screen.InjectKey(k, r, mod)
}

// typeChord delivers a key combination the way a desktop would: a chord
// that is registered as a global hotkey is taken by the OS and reported to
// the engine, anything else reaches the terminal.
func (s *session) typeChord(t *testing.T, k tcell.Key, r rune, mod tcell.ModMask) {
	t.Helper()
	code, mods, ok := Resolve(tcell.NewEventKey(k, r, mod))
	require.True(t, ok)
	id := hotkey.IdentifierFor(key.NewChord(mods, code))
	if !s.host.be.IsRegistered(id) {
		s.press(k, r, mod)
		return
	}

	s.host.mu.Lock()
	defer s.host.mu.Unlock()
	b, ok := s.host.eng.Registry().Lookup(id)
	require.True(t, ok)
	s.host.eng.OnSystemHotkey(context.Background(), hotkey.Fire{ID: id, Token: b.Token})
}

func (s *session) screenText() string {
	cells, w, _ := s.screen.GetContents()
	var b strings.Builder
	for i, c := range cells {
		if len(c.Runes) > 0 {
			b.WriteRune(c.Runes[0])
		} else {
			b.WriteRune(' ')
		}
		if (i+1)%w == 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func TestTypedChordIsAssigned(t *testing.T) {
	s := start(t, slot.New(3))

	s.press(tcell.KeyDown, 0, tcell.ModNone)
	require.Eventually(t, func() bool { return s.ui.Model().Focused() == 2 }, 5*time.Second, 10*time.Millisecond)

	s.press(tcell.KeyRune, 'k', tcell.ModCtrl)
	require.Eventually(t, func() bool {
		return s.ui.Model().Rows()[1].Chord == "CTRL + K"
	}, 5*time.Second, 10*time.Millisecond)

	chord := key.MustParseChord("CTRL + K")
	assert.True(t, s.host.be.IsRegistered(hotkey.IdentifierFor(chord)))
	assert.Eventually(t, func() bool {
		return strings.Contains(s.screenText(), "CTRL + K")
	}, 5*time.Second, 10*time.Millisecond)
}

func TestPlainKeyShowsHint(t *testing.T) {
	s := start(t, slot.New(2))

	s.press(tcell.KeyRune, 'x', tcell.ModNone)
	require.Eventually(t, func() bool {
		return strings.Contains(s.ui.Model().Status, "hold Ctrl")
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, s.host.be.Live())
}

func TestTypingExistingChordSwaps(t *testing.T) {
	slots := slot.New(2)
	slots[0].Chord = key.MustParseChord("ALT + 1")
	s := start(t, slots)

	s.press(tcell.KeyDown, 0, tcell.ModNone)
	s.press(tcell.KeyRune, '1', tcell.ModAlt)

	require.Eventually(t, func() bool {
		rows := s.ui.Model().Rows()
		return rows[1].Chord == "ALT + 1" && rows[0].Chord == ""
	}, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, s.ui.Model().Status, "swapped with slot 1")
}

func TestDeleteUnbinds(t *testing.T) {
	slots := slot.New(2)
	slots[0].Chord = key.MustParseChord("CTRL + F1")
	s := start(t, slots)
	require.Equal(t, 1, s.host.be.Live())

	s.press(tcell.KeyDelete, 0, tcell.ModNone)
	require.Eventually(t, func() bool {
		return s.ui.Model().Rows()[0].Chord == ""
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, s.host.be.Live())
}

func TestInsertTogglesHotkeys(t *testing.T) {
	s := start(t, slot.New(1))
	require.True(t, s.ui.Model().Active)

	s.press(tcell.KeyInsert, 0, tcell.ModNone)
	require.Eventually(t, func() bool { return !s.ui.Model().Active }, 5*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return strings.Contains(s.screenText(), "hotkeys off")
	}, 5*time.Second, 10*time.Millisecond)
}

func TestFiredBindingShowsOnStatus(t *testing.T) {
	slots := slot.New(1)
	slots[0].Chord = key.MustParseChord("CTRL + SHIFT + P")
	slots[0].Label = "Applause"
	s := start(t, slots)

	s.host.mu.Lock()
	s.host.eng.OnSystemHotkey(context.Background(), hotkey.Fire{
		ID:    hotkey.IdentifierFor(slots[0].Chord),
		Token: mustBinding(t, s.host, 1).Token,
	})
	s.host.mu.Unlock()

	require.Eventually(t, func() bool {
		return strings.Contains(s.ui.Model().Status, "Applause")
	}, 5*time.Second, 10*time.Millisecond)
}

func TestEnterTakesRegisteredChord(t *testing.T) {
	slots := slot.New(2)
	slots[0].Chord = key.MustParseChord("CTRL + K")
	slots[0].Label = "Drumroll"
	s := start(t, slots)

	s.press(tcell.KeyDown, 0, tcell.ModNone)
	require.Eventually(t, func() bool { return s.ui.Model().Focused() == 2 }, 5*time.Second, 10*time.Millisecond)
	s.press(tcell.KeyEnter, 0, tcell.ModNone)
	require.Eventually(t, func() bool { return s.ui.Model().Armed() == 2 }, 5*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return strings.Contains(s.screenText(), "press a chord...")
	}, 5*time.Second, 10*time.Millisecond)

	s.typeChord(t, tcell.KeyCtrlK, 'k', tcell.ModCtrl)

	require.Eventually(t, func() bool {
		rows := s.ui.Model().Rows()
		return rows[1].Chord == "CTRL + K" && rows[0].Chord == ""
	}, 5*time.Second, 10*time.Millisecond)
	m := s.ui.Model()
	assert.Contains(t, m.Status, "swapped with slot 1")
	assert.NotContains(t, m.Status, "Drumroll")
	assert.Zero(t, m.Armed())
	assert.Equal(t, 2, mustBinding(t, s.host, 2).Slot)
}

func TestRegisteredChordFiresWhenNotArmed(t *testing.T) {
	slots := slot.New(2)
	slots[0].Chord = key.MustParseChord("CTRL + K")
	slots[0].Label = "Drumroll"
	s := start(t, slots)

	s.press(tcell.KeyDown, 0, tcell.ModNone)
	require.Eventually(t, func() bool { return s.ui.Model().Focused() == 2 }, 5*time.Second, 10*time.Millisecond)
	s.typeChord(t, tcell.KeyCtrlK, 'k', tcell.ModCtrl)

	require.Eventually(t, func() bool {
		return strings.Contains(s.ui.Model().Status, "Drumroll")
	}, 5*time.Second, 10*time.Millisecond)
	rows := s.ui.Model().Rows()
	assert.Equal(t, "CTRL + K", rows[0].Chord)
	assert.Empty(t, rows[1].Chord)
}

func TestEscapeDisarmsBeforeQuitting(t *testing.T) {
	s := start(t, slot.New(1))

	s.press(tcell.KeyEnter, 0, tcell.ModNone)
	require.Eventually(t, func() bool { return s.ui.Model().Armed() == 1 }, 5*time.Second, 10*time.Millisecond)

	s.press(tcell.KeyEscape, 0, tcell.ModNone)
	require.Eventually(t, func() bool { return s.ui.Model().Armed() == 0 }, 5*time.Second, 10*time.Millisecond)
	select {
	case err := <-s.done:
		t.Fatalf("ui quit while disarming: %v", err)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestEscapeQuits(t *testing.T) {
	s := start(t, slot.New(1))

	s.press(tcell.KeyEscape, 0, tcell.ModNone)
	select {
	case err := <-s.done:
		assert.NoError(t, err)
		s.done <- err
	case <-time.After(5 * time.Second):
		t.Fatal("escape did not quit")
	}
}

func mustBinding(t *testing.T, h *host, ordinal int) hotkey.Binding {
	t.Helper()
	b, ok := h.eng.Registry().BindingFor(ordinal)
	require.True(t, ok)
	return b
}
