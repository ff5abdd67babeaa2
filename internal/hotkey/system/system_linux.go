//go:build linux

package system

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jezek/xgb/xproto"
	"github.com/sirupsen/logrus"

	"github.com/dshills/chordboard/internal/hotkey"
	"github.com/dshills/chordboard/internal/input/key"
)

// ErrGrabbed is returned when another X client already holds a chord.
var ErrGrabbed = errors.New("chord is grabbed by another application")

// lockMasks are grabbed alongside each chord so Caps Lock and Num Lock do
// not hide it.
var lockMasks = []uint16{
	0,
	xproto.ModMaskLock,
	xproto.ModMask2,
	xproto.ModMaskLock | xproto.ModMask2,
}

type keyPress struct {
	code  byte
	state uint16
}

// display is the X server connection keys are grabbed on. Grab and Ungrab
// return once the server has answered.
type display interface {
	Keycode(sym uint32) (byte, bool)
	Grab(code byte, mods uint16) error
	Ungrab(code byte, mods uint16) error
	Presses() <-chan keyPress
	Close() error
}

type grab struct {
	code byte
	mods uint16
	fire hotkey.Fire
}

// Backend grabs chords on the X root window. Registration errors come back
// from Register; presses are delivered on Events as hotkey.Fire values.
type Backend struct {
	mu     sync.Mutex
	dpy    display
	grabs  map[hotkey.Identifier]grab
	events chan hotkey.Fire
	done   chan struct{}
	once   sync.Once
	log    logrus.FieldLogger
}

// New connects to the X server named by DISPLAY.
func New(log logrus.FieldLogger) (*Backend, error) {
	dpy, err := openDisplay()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}
	return newBackend(dpy, log), nil
}

func newBackend(dpy display, log logrus.FieldLogger) *Backend {
	b := &Backend{
		dpy:    dpy,
		grabs:  make(map[hotkey.Identifier]grab),
		events: make(chan hotkey.Fire, 32),
		done:   make(chan struct{}),
		log:    log.WithField("component", "hotkey.system"),
	}
	go b.pump()
	return b
}

// Events returns the channel presses are delivered on.
func (b *Backend) Events() <-chan hotkey.Fire {
	return b.events
}

// Register implements hotkey.Backend.
func (b *Backend) Register(id hotkey.Identifier, chord key.Chord, token uuid.UUID) error {
	sym, mods, err := translate(chord)
	if err != nil {
		return err
	}
	code, ok := b.dpy.Keycode(sym)
	if !ok {
		return fmt.Errorf("%s: keyboard has no key for keysym %#x", chord, sym)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.grabs[id]; ok {
		return fmt.Errorf("%s is already registered", chord)
	}

	for i, lock := range lockMasks {
		if err := b.dpy.Grab(code, mods|lock); err != nil {
			for _, l := range lockMasks[:i] {
				_ = b.dpy.Ungrab(code, mods|l)
			}
			return fmt.Errorf("grab %s: %w", chord, err)
		}
	}
	b.grabs[id] = grab{code: code, mods: mods, fire: hotkey.Fire{ID: id, Token: token}}
	return nil
}

// Unregister implements hotkey.Backend.
func (b *Backend) Unregister(id hotkey.Identifier) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	g, ok := b.grabs[id]
	if !ok {
		return nil
	}
	delete(b.grabs, id)
	return b.ungrab(g)
}

func (b *Backend) ungrab(g grab) error {
	var errs []error
	for _, lock := range lockMasks {
		if err := b.dpy.Ungrab(g.code, g.mods|lock); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Backend) pump() {
	presses := b.dpy.Presses()
	for {
		select {
		case <-b.done:
			return
		case p, ok := <-presses:
			if !ok {
				return
			}
			fire, ok := b.match(p)
			if !ok {
				continue
			}
			select {
			case b.events <- fire:
			case <-b.done:
				return
			}
		}
	}
}

func (b *Backend) match(p keyPress) (hotkey.Fire, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, g := range b.grabs {
		if g.code == p.code && g.mods == p.state&chordMask {
			return g.fire, true
		}
	}
	return hotkey.Fire{}, false
}

// Close releases every grab and the X connection.
func (b *Backend) Close() error {
	var err error
	b.once.Do(func() {
		close(b.done)

		b.mu.Lock()
		var errs []error
		for id, g := range b.grabs {
			errs = append(errs, b.ungrab(g))
			delete(b.grabs, id)
		}
		b.mu.Unlock()

		errs = append(errs, b.dpy.Close())
		err = errors.Join(errs...)
		if err != nil {
			b.log.WithError(err).Warn("releasing hotkeys")
		}
	})
	return err
}
