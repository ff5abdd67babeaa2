// Package ui is the terminal front end of the board. It draws the slots of
// the active profile and feeds typed chords into their capture fields.
//
// Terminals cannot report a bare modifier press, so each key combination is
// replayed into the engine as the full press and release sequence. Plain
// keys without modifiers can never form a chord, which leaves them free for
// navigation.
//
// A chord that is already registered is grabbed by the OS and never
// reaches the terminal. Enter arms the focused slot so that the next such
// chord is moved to it.
package ui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"github.com/dshills/chordboard/internal/app"
	"github.com/dshills/chordboard/internal/engine"
	"github.com/dshills/chordboard/internal/event"
	"github.com/dshills/chordboard/internal/input/capture"
	"github.com/dshills/chordboard/internal/input/key"
)

// Host runs work on the goroutine that owns the engine.
type Host interface {
	Do(ctx context.Context, fn func(context.Context, *engine.Engine) error) error
	Bus() *event.Bus
}

// UI is the interactive board.
type UI struct {
	term *Terminal
	host Host
	log  logrus.FieldLogger

	mu    sync.Mutex
	model *Model
	subs  []event.Subscription
}

// New creates a UI drawing on term.
func New(term *Terminal, host Host, log logrus.FieldLogger) *UI {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &UI{term: term, host: host, log: log, model: NewModel(0, false, nil)}
}

// Model returns a copy of the current board state.
func (u *UI) Model() Model {
	u.mu.Lock()
	defer u.mu.Unlock()
	m := *u.model
	m.rows = append([]Row(nil), u.model.rows...)
	return m
}

// Run shows the board until Esc is pressed or ctx is cancelled.
func (u *UI) Run(ctx context.Context) error {
	if err := u.term.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer u.term.Shutdown()

	if err := u.load(ctx); err != nil {
		return err
	}
	if err := u.subscribe(); err != nil {
		return err
	}
	defer u.unsubscribe()

	quit := make(chan struct{})
	defer close(quit)
	events := make(chan tcell.Event)
	go func() {
		for {
			ev := u.term.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	for {
		u.redraw()
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			kev, ok := ev.(*tcell.EventKey)
			if !ok {
				continue
			}
			err := u.handleKey(ctx, kev)
			if errors.Is(err, app.ErrQuit) || ctx.Err() != nil {
				return nil
			}
			if err != nil {
				return err
			}
		}
	}
}

func (u *UI) load(ctx context.Context) error {
	var m *Model
	err := u.host.Do(ctx, func(_ context.Context, e *engine.Engine) error {
		m = NewModel(e.ProfileID(), e.IsActive(), e.Views())
		return nil
	})
	if err != nil {
		return fmt.Errorf("loading board: %w", err)
	}
	u.mu.Lock()
	u.model = m
	u.mu.Unlock()
	return nil
}

func (u *UI) redraw() {
	u.mu.Lock()
	defer u.mu.Unlock()
	Draw(u.term, u.model)
}

// handleKey runs one key press. Errors from the engine end up on the
// status line; only Esc and a stopped host end the UI.
func (u *UI) handleKey(ctx context.Context, ev *tcell.EventKey) error {
	if ev.Modifiers()&(tcell.ModCtrl|tcell.ModAlt|tcell.ModMeta|tcell.ModShift) == 0 {
		switch ev.Key() {
		case tcell.KeyEscape:
			if u.armed() != 0 {
				return u.disarm(ctx)
			}
			return app.ErrQuit
		case tcell.KeyEnter:
			return u.arm(ctx)
		case tcell.KeyUp:
			return u.move(ctx, -1)
		case tcell.KeyDown, tcell.KeyTab:
			return u.move(ctx, 1)
		case tcell.KeyBacktab:
			return u.move(ctx, -1)
		case tcell.KeyDelete:
			return u.unbind(ctx)
		case tcell.KeyInsert:
			return u.toggle(ctx)
		}
	}

	code, mods, ok := Resolve(ev)
	if !ok {
		return nil
	}
	return u.capture(ctx, mods, code)
}

func (u *UI) capture(ctx context.Context, mods key.Modifier, code key.Code) error {
	ordinal := u.focused()
	if ordinal == 0 {
		return nil
	}

	var rejected bool
	err := u.host.Do(ctx, func(ctx context.Context, e *engine.Engine) error {
		var first error
		for _, kev := range Sequence(mods, code) {
			res, err := e.HandleKey(ctx, ordinal, kev)
			if kev.Code == code && kev.IsDown() {
				rejected = res.Outcome == capture.Rejected
			}
			if err != nil && first == nil {
				first = err
			}
		}
		return first
	})

	switch {
	case err == nil && rejected && mods.IsEmpty():
		u.setStatus("hold Ctrl, Alt or Shift with the key")
	case err == nil && rejected:
		u.setStatus(fmt.Sprintf("%s cannot end a chord", code.Name()))
	case err != nil:
		return u.report(err)
	}
	return nil
}

func (u *UI) move(ctx context.Context, delta int) error {
	u.mu.Lock()
	prev := u.model.Move(delta)
	u.mu.Unlock()
	if prev == 0 {
		return nil
	}
	return u.report(u.host.Do(ctx, func(ctx context.Context, e *engine.Engine) error {
		_, err := e.FocusLost(ctx, prev)
		return err
	}))
}

func (u *UI) arm(ctx context.Context) error {
	ordinal := u.focused()
	if ordinal == 0 {
		return nil
	}
	err := u.host.Do(ctx, func(ctx context.Context, e *engine.Engine) error {
		return e.Arm(ctx, ordinal)
	})
	if err == nil {
		u.setStatus(fmt.Sprintf("slot %d: press a bound chord to move it here, esc cancels", ordinal))
	}
	return u.report(err)
}

func (u *UI) disarm(ctx context.Context) error {
	err := u.host.Do(ctx, func(ctx context.Context, e *engine.Engine) error {
		e.Disarm(ctx)
		return nil
	})
	if err == nil {
		u.setStatus("")
	}
	return u.report(err)
}

func (u *UI) unbind(ctx context.Context) error {
	ordinal := u.focused()
	if ordinal == 0 {
		return nil
	}
	err := u.host.Do(ctx, func(ctx context.Context, e *engine.Engine) error {
		return e.Unassign(ctx, ordinal)
	})
	if err == nil {
		u.setStatus(fmt.Sprintf("slot %d unbound", ordinal))
	}
	return u.report(err)
}

func (u *UI) toggle(ctx context.Context) error {
	return u.report(u.host.Do(ctx, func(ctx context.Context, e *engine.Engine) error {
		return e.SetActive(ctx, !e.IsActive())
	}))
}

// report puts an engine error on the status line. Cancellation and a
// stopped host are returned so the UI exits.
func (u *UI) report(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, app.ErrNotRunning) {
		return err
	}
	u.log.WithError(err).Debug("key handling")
	u.setStatus(err.Error())
	return nil
}

func (u *UI) focused() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.model.Focused()
}

func (u *UI) armed() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.model.Armed()
}

func (u *UI) setStatus(s string) {
	u.mu.Lock()
	u.model.Status = s
	u.mu.Unlock()
}
