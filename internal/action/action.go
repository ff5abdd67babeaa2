// Package action runs the user's Lua action script when a hotkey fires.
//
// The script defines a global on_fire(ev) function. ev carries the slot
// ordinal, the chord text, the label and the payload path. The script runs
// in a restricted state: the io, os, debug and package libraries are not
// opened, and external programs are started only through chordboard.spawn.
//
//	function on_fire(ev)
//	  chordboard.spawn("paplay", ev.payload)
//	end
package action

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/chordboard/internal/event"
)

// DefaultTimeout bounds one call into the script.
const DefaultTimeout = 2 * time.Second

// HandlerName is the global function called for every fired hotkey.
const HandlerName = "on_fire"

var (
	// ErrNoHandler indicates the script doesn't define on_fire.
	ErrNoHandler = errors.New("script defines no " + HandlerName + " function")

	// ErrClosed is returned by Fire after Close.
	ErrClosed = errors.New("action script closed")
)

// Spawner starts a program without waiting for it.
type Spawner func(name string, args ...string) error

// Script is a loaded action script. It is safe for concurrent use; calls
// into Lua are serialized.
type Script struct {
	path    string
	timeout time.Duration
	log     logrus.FieldLogger
	spawn   Spawner

	mu     sync.Mutex
	L      *lua.LState
	closed bool
}

// Option configures a Script.
type Option func(*Script)

// WithTimeout sets the per-call limit.
func WithTimeout(d time.Duration) Option {
	return func(s *Script) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger behind chordboard.log and print.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Script) {
		if log != nil {
			s.log = log
		}
	}
}

// WithSpawner replaces the function behind chordboard.spawn.
func WithSpawner(fn Spawner) Option {
	return func(s *Script) {
		if fn != nil {
			s.spawn = fn
		}
	}
}

// Load runs the script at path once and checks that it defines on_fire.
func Load(path string, opts ...Option) (*Script, error) {
	nop := logrus.New()
	nop.SetLevel(logrus.PanicLevel)
	s := &Script{
		path:    path,
		timeout: DefaultTimeout,
		log:     nop,
		spawn:   startProcess,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.L = newState()
	s.installAPI()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.L.SetContext(ctx)
	err := s.L.DoFile(path)
	s.L.RemoveContext()
	if err != nil {
		s.L.Close()
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if s.L.GetGlobal(HandlerName).Type() != lua.LTFunction {
		s.L.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrNoHandler)
	}
	return s, nil
}

// Path returns the file the script was loaded from.
func (s *Script) Path() string {
	return s.path
}

// Fire calls on_fire for one pressed hotkey.
func (s *Script) Fire(ctx context.Context, f event.BindingFired) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	ev := s.L.NewTable()
	ev.RawSetString("slot", lua.LNumber(f.Slot))
	ev.RawSetString("chord", lua.LString(f.Chord.String()))
	ev.RawSetString("label", lua.LString(f.Label))
	ev.RawSetString("payload", lua.LString(f.Payload))

	err := s.L.CallByParam(lua.P{
		Fn:      s.L.GetGlobal(HandlerName),
		NRet:    0,
		Protect: true,
	}, ev)
	if err != nil {
		return fmt.Errorf("%s slot %d: %w", HandlerName, f.Slot, err)
	}
	return nil
}

// Close releases the Lua state. It is safe to call more than once.
func (s *Script) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.L.Close()
}

func startProcess(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
