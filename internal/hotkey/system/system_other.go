//go:build !darwin && !linux && !windows

package system

import (
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dshills/chordboard/internal/hotkey"
	"github.com/dshills/chordboard/internal/input/key"
)

// ErrUnsupported is returned by every registration on this platform.
var ErrUnsupported = errors.New("global hotkeys are not supported on this platform")

// Backend refuses every registration.
type Backend struct {
	events chan hotkey.Fire
}

// New always fails with ErrUnsupported. The returned backend refuses every
// registration.
func New(log logrus.FieldLogger) (*Backend, error) {
	log.WithField("component", "hotkey.system").Debug("global hotkeys unsupported")
	return &Backend{events: make(chan hotkey.Fire)}, ErrUnsupported
}

// Events returns a channel that never delivers.
func (b *Backend) Events() <-chan hotkey.Fire { return b.events }

// Register implements hotkey.Backend.
func (b *Backend) Register(hotkey.Identifier, key.Chord, uuid.UUID) error { return ErrUnsupported }

// Unregister implements hotkey.Backend.
func (b *Backend) Unregister(hotkey.Identifier) error { return nil }

// Close is a no-op.
func (b *Backend) Close() error { return nil }
