//go:build linux

package system

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// xgbDisplay talks to the X server over the wire protocol, so a missing
// server is an error from openDisplay rather than a crash.
type xgbDisplay struct {
	conn     *xgb.Conn
	root     xproto.Window
	keycodes map[uint32]byte
	presses  chan keyPress
	done     chan struct{}
	once     sync.Once
}

func openDisplay() (display, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	setup := xproto.Setup(conn)
	d := &xgbDisplay{
		conn:    conn,
		root:    setup.DefaultScreen(conn).Root,
		presses: make(chan keyPress, 32),
		done:    make(chan struct{}),
	}
	if err := d.loadKeymap(setup); err != nil {
		conn.Close()
		return nil, err
	}
	go d.read()
	return d, nil
}

// loadKeymap indexes every keysym on the keyboard by the first keycode that
// produces it.
func (d *xgbDisplay) loadKeymap(setup *xproto.SetupInfo) error {
	first := setup.MinKeycode
	count := byte(setup.MaxKeycode - first + 1)
	reply, err := xproto.GetKeyboardMapping(d.conn, first, count).Reply()
	if err != nil {
		return fmt.Errorf("keyboard mapping: %w", err)
	}

	per := int(reply.KeysymsPerKeycode)
	d.keycodes = make(map[uint32]byte)
	for i := 0; i < int(count); i++ {
		for j := 0; j < per && i*per+j < len(reply.Keysyms); j++ {
			sym := uint32(reply.Keysyms[i*per+j])
			if sym == 0 {
				continue
			}
			if _, ok := d.keycodes[sym]; !ok {
				d.keycodes[sym] = byte(first) + byte(i)
			}
		}
	}
	return nil
}

func (d *xgbDisplay) read() {
	defer close(d.presses)
	for {
		ev, xerr := d.conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return
		}
		kp, ok := ev.(xproto.KeyPressEvent)
		if !ok {
			continue
		}
		select {
		case d.presses <- keyPress{code: byte(kp.Detail), state: kp.State}:
		case <-d.done:
			return
		}
	}
}

func (d *xgbDisplay) Keycode(sym uint32) (byte, bool) {
	code, ok := d.keycodes[sym]
	return code, ok
}

func (d *xgbDisplay) Grab(code byte, mods uint16) error {
	err := xproto.GrabKeyChecked(d.conn, false, d.root, mods, xproto.Keycode(code),
		xproto.GrabModeAsync, xproto.GrabModeAsync).Check()
	var access xproto.AccessError
	if errors.As(err, &access) {
		return ErrGrabbed
	}
	return err
}

func (d *xgbDisplay) Ungrab(code byte, mods uint16) error {
	return xproto.UngrabKeyChecked(d.conn, xproto.Keycode(code), d.root, mods).Check()
}

func (d *xgbDisplay) Presses() <-chan keyPress {
	return d.presses
}

func (d *xgbDisplay) Close() error {
	d.once.Do(func() {
		close(d.done)
		d.conn.Close()
	})
	return nil
}
