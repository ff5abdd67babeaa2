//go:build linux

package system

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jezek/xgb/xproto"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/chordboard/internal/hotkey"
	"github.com/dshills/chordboard/internal/input/key"
)

type grabKey struct {
	code byte
	mods uint16
}

// fakeDisplay answers like an X server with letters on keycodes 38 and up.
type fakeDisplay struct {
	mu      sync.Mutex
	grabbed map[grabKey]bool
	taken   map[grabKey]bool
	presses chan keyPress
	closed  bool
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{
		grabbed: make(map[grabKey]bool),
		taken:   make(map[grabKey]bool),
		presses: make(chan keyPress, 8),
	}
}

func (d *fakeDisplay) Keycode(sym uint32) (byte, bool) {
	if sym >= 'a' && sym <= 'z' {
		return byte(38 + sym - 'a'), true
	}
	return 0, false
}

func (d *fakeDisplay) Grab(code byte, mods uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	k := grabKey{code, mods}
	if d.taken[k] {
		return ErrGrabbed
	}
	d.grabbed[k] = true
	return nil
}

func (d *fakeDisplay) Ungrab(code byte, mods uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.grabbed, grabKey{code, mods})
	return nil
}

func (d *fakeDisplay) Presses() <-chan keyPress { return d.presses }

func (d *fakeDisplay) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *fakeDisplay) grabs() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.grabbed)
}

func quiet() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func newTestBackend(t *testing.T) (*Backend, *fakeDisplay) {
	t.Helper()
	d := newFakeDisplay()
	b := newBackend(d, quiet())
	t.Cleanup(func() { _ = b.Close() })
	return b, d
}

func TestRegisterGrabsLockVariants(t *testing.T) {
	b, d := newTestBackend(t)
	c := key.MustParseChord("CTRL + K")

	require.NoError(t, b.Register(hotkey.IdentifierFor(c), c, uuid.New()))
	assert.Equal(t, len(lockMasks), d.grabs())
	assert.True(t, d.grabbed[grabKey{38 + 10, xproto.ModMaskControl | xproto.ModMaskLock}])
}

func TestUnregisterReturnsPromptly(t *testing.T) {
	b, d := newTestBackend(t)
	c := key.MustParseChord("ALT + Q")
	id := hotkey.IdentifierFor(c)
	require.NoError(t, b.Register(id, c, uuid.New()))

	done := make(chan error, 1)
	go func() { done <- b.Unregister(id) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("unregister blocked")
	}
	assert.Zero(t, d.grabs())

	// The chord can be taken again straight away.
	require.NoError(t, b.Register(id, c, uuid.New()))
}

func TestGrabRefusalIsReported(t *testing.T) {
	b, d := newTestBackend(t)
	c := key.MustParseChord("CTRL + SHIFT + P")
	code := byte(38 + 15)
	d.taken[grabKey{code, xproto.ModMaskControl | xproto.ModMaskShift | xproto.ModMask2}] = true

	err := b.Register(hotkey.IdentifierFor(c), c, uuid.New())
	require.ErrorIs(t, err, ErrGrabbed)
	assert.Zero(t, d.grabs(), "partial grabs are rolled back")

	reg := hotkey.NewRegistry(b, hotkey.WithLogger(quiet()))
	_, err = reg.Register(1, c)
	var conflict *hotkey.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 1, conflict.Slot)
	assert.Equal(t, 0, reg.Len())
}

func TestUnmappedKeyIsRefused(t *testing.T) {
	b, _ := newTestBackend(t)
	c := key.MustParseChord("CTRL + F5")
	assert.Error(t, b.Register(hotkey.IdentifierFor(c), c, uuid.New()))
}

func TestPressIgnoresLockModifiers(t *testing.T) {
	b, d := newTestBackend(t)
	c := key.MustParseChord("CTRL + K")
	id := hotkey.IdentifierFor(c)
	token := uuid.New()
	require.NoError(t, b.Register(id, c, token))

	d.presses <- keyPress{code: 38 + 1, state: xproto.ModMaskControl}
	d.presses <- keyPress{code: 38 + 10, state: xproto.ModMaskControl | xproto.ModMask2}

	select {
	case f := <-b.Events():
		assert.Equal(t, hotkey.Fire{ID: id, Token: token}, f)
	case <-time.After(5 * time.Second):
		t.Fatal("no fire delivered")
	}
	select {
	case f := <-b.Events():
		t.Fatalf("unexpected fire %v", f)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCloseReleasesGrabs(t *testing.T) {
	b, d := newTestBackend(t)
	c := key.MustParseChord("ALT + Z")
	require.NoError(t, b.Register(hotkey.IdentifierFor(c), c, uuid.New()))

	require.NoError(t, b.Close())
	assert.Zero(t, d.grabs())
	assert.True(t, d.closed)
	assert.NoError(t, b.Close())
}

func TestNewWithoutDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")
	_, err := New(quiet())
	assert.Error(t, err)
}

func TestTranslateKeysyms(t *testing.T) {
	cases := map[string]struct {
		sym  uint32
		mods uint16
	}{
		"CTRL + A":      {'a', xproto.ModMaskControl},
		"ALT + 7":       {'7', xproto.ModMask1},
		"SHIFT + F1":    {0xffbe, xproto.ModMaskShift},
		"CTRL + F12":    {0xffc9, xproto.ModMaskControl},
		"CTRL + Left":   {0xff51, xproto.ModMaskControl},
		"ALT + NumPad3": {0xffb3, xproto.ModMask1},
	}
	for in, want := range cases {
		c, err := key.ParseChord(in)
		require.NoError(t, err, in)
		sym, mods, err := translate(c)
		require.NoError(t, err, in)
		assert.Equal(t, want.sym, sym, in)
		assert.Equal(t, want.mods, mods, in)
	}

	_, _, err := translate(key.NewChord(key.ModCtrl, key.Code(0xFF)))
	assert.Error(t, err)
}
