//go:build darwin || windows

package system

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	xhotkey "golang.design/x/hotkey"

	"github.com/dshills/chordboard/internal/hotkey"
	"github.com/dshills/chordboard/internal/input/key"
)

type registration struct {
	hk   *xhotkey.Hotkey
	done chan struct{}
}

// Backend registers hotkeys with the OS through golang.design/x/hotkey.
// Each registration gets a goroutine that forwards key-downs to Events as
// hotkey.Fire values; nothing else touches registry state.
type Backend struct {
	mu     sync.Mutex
	regs   map[hotkey.Identifier]*registration
	events chan hotkey.Fire
	log    logrus.FieldLogger
}

// New creates an OS backend. It cannot fail on this platform.
func New(log logrus.FieldLogger) (*Backend, error) {
	return &Backend{
		regs:   make(map[hotkey.Identifier]*registration),
		events: make(chan hotkey.Fire, 32),
		log:    log.WithField("component", "hotkey.system"),
	}, nil
}

// Events returns the channel presses are delivered on.
func (b *Backend) Events() <-chan hotkey.Fire {
	return b.events
}

// Register implements hotkey.Backend.
func (b *Backend) Register(id hotkey.Identifier, chord key.Chord, token uuid.UUID) error {
	mods, k, err := translate(chord)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.regs[id]; ok {
		return fmt.Errorf("%s is already registered", chord)
	}

	hk := xhotkey.New(mods, k)
	if err := hk.Register(); err != nil {
		return err
	}

	reg := &registration{hk: hk, done: make(chan struct{})}
	b.regs[id] = reg
	go b.pump(reg, hotkey.Fire{ID: id, Token: token})
	return nil
}

func (b *Backend) pump(reg *registration, fire hotkey.Fire) {
	for {
		select {
		case <-reg.done:
			return
		case _, ok := <-reg.hk.Keydown():
			if !ok {
				return
			}
			select {
			case b.events <- fire:
			case <-reg.done:
				return
			}
		}
	}
}

// Unregister implements hotkey.Backend.
func (b *Backend) Unregister(id hotkey.Identifier) error {
	b.mu.Lock()
	reg, ok := b.regs[id]
	if ok {
		delete(b.regs, id)
	}
	b.mu.Unlock()
	if !ok {
		return nil
	}

	close(reg.done)
	return reg.hk.Unregister()
}

// Close releases every registration.
func (b *Backend) Close() error {
	b.mu.Lock()
	ids := make([]hotkey.Identifier, 0, len(b.regs))
	for id := range b.regs {
		ids = append(ids, id)
	}
	b.mu.Unlock()

	var firstErr error
	for _, id := range ids {
		if err := b.Unregister(id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		b.log.WithError(firstErr).Warn("releasing hotkeys")
	}
	return firstErr
}

// translate maps a chord onto the library's per-platform modifier and key
// values. modifierMap and keyFor are defined in the keymap_*.go files.
func translate(c key.Chord) ([]xhotkey.Modifier, xhotkey.Key, error) {
	k, ok := keyFor(c.Code)
	if !ok {
		return nil, 0, fmt.Errorf("key %s has no global hotkey mapping on this platform", c.Code.Name())
	}
	mods := make([]xhotkey.Modifier, 0, c.Mods.Count())
	for _, m := range c.Mods.Each() {
		mods = append(mods, modifierMap[m])
	}
	return mods, k, nil
}
