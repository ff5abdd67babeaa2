// Package app wires storage, the hotkey backend and the engine together and
// runs the event loop that owns them.
//
// Everything that touches the engine runs on the loop goroutine: OS hotkey
// presses arrive on the backend's channel, config changes arrive from the
// watcher, and front ends submit work with Do.
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dshills/chordboard/internal/action"
	"github.com/dshills/chordboard/internal/config"
	"github.com/dshills/chordboard/internal/config/watcher"
	"github.com/dshills/chordboard/internal/engine"
	"github.com/dshills/chordboard/internal/event"
	"github.com/dshills/chordboard/internal/hotkey"
	"github.com/dshills/chordboard/internal/storage"
)

// Backend is an OS hotkey backend that reports presses on a channel.
type Backend interface {
	hotkey.Backend
	Events() <-chan hotkey.Fire
	Close() error
}

// Store is the profile persistence the application needs.
type Store interface {
	engine.Repository
	GetProfile(ctx context.Context, id int64) (storage.Profile, error)
	CreateProfile(ctx context.Context, name string, n int) (storage.Profile, error)
}

// Options configures the application.
type Options struct {
	// ConfigPath is the file reloaded when WatchConfig is set.
	ConfigPath string

	// WatchConfig reloads the config file when it changes.
	WatchConfig bool

	// ProfileID overrides the configured default profile when non-zero.
	ProfileID int64
}

// Application owns the engine and runs its event loop.
type Application struct {
	cfg     config.Config
	opts    Options
	log     *logrus.Logger
	store   Store
	backend Backend
	bus     *event.Bus
	reg     *hotkey.Registry
	engine  *engine.Engine
	subs    []event.Subscription
	metrics *Metrics
	actions *action.Script

	tasks    chan task
	running  atomic.Bool
	done     chan struct{}
	stopOnce sync.Once
}

type task struct {
	fn     func(context.Context, *engine.Engine) error
	result chan error
}

// New wires an application. Nothing is registered until Run.
func New(cfg config.Config, store Store, backend Backend, log *logrus.Logger, opts Options) (*Application, error) {
	if log == nil {
		return nil, &InitError{Component: "logger", Err: errors.New("nil logger")}
	}
	app := &Application{
		cfg:     cfg,
		opts:    opts,
		log:     log,
		store:   store,
		backend: backend,
		bus:     event.NewBus(event.WithErrorHandler(busErrorHandler(log))),
		metrics: NewMetrics(),
		tasks:   make(chan task),
		done:    make(chan struct{}),
	}
	app.reg = hotkey.NewRegistry(backend,
		hotkey.WithLogger(WithComponent(log, "hotkey")),
		hotkey.WithActive(cfg.Hotkeys.Active),
	)
	app.engine = engine.New(app.reg, store,
		engine.WithLogger(log),
		engine.WithBus(app.bus),
	)
	if err := app.subscribe(); err != nil {
		return nil, &InitError{Component: "subscriptions", Err: err}
	}
	return app, nil
}

// Bus returns the notification bus.
func (app *Application) Bus() *event.Bus {
	return app.bus
}

// Metrics returns the loop metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Config returns the configuration currently applied.
func (app *Application) Config() config.Config {
	return app.cfg
}

// ProfileID returns the profile Run loads.
func (app *Application) ProfileID() int64 {
	if app.opts.ProfileID != 0 {
		return app.opts.ProfileID
	}
	return app.cfg.Profile.Default
}

// IsRunning returns true while the event loop runs.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Run loads the profile, registers its chords and processes events until
// ctx is cancelled or Shutdown is called. Every registration is released
// before Run returns. An application runs once; Do fails with
// ErrNotRunning after Run returns.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)
	defer app.Shutdown()

	if err := app.ensureProfile(ctx); err != nil {
		return &InitError{Component: "profile", Err: err}
	}
	if err := app.engine.LoadProfile(ctx, app.ProfileID()); err != nil {
		return &InitError{Component: "profile", Err: err}
	}
	defer app.release()

	app.loadActions(app.cfg.Actions)
	defer app.closeActions()

	var w *watcher.Watcher
	if app.opts.WatchConfig && app.opts.ConfigPath != "" {
		var err error
		w, err = watcher.New(app.opts.ConfigPath, watcher.WithLogger(app.log))
		if err != nil {
			app.log.WithError(err).Warn("config reload disabled")
		} else {
			defer w.Close()
		}
	}

	app.log.WithFields(logrus.Fields{
		"profile": app.ProfileID(),
		"active":  app.engine.IsActive(),
	}).Info("event loop started")
	return app.eventLoop(ctx, w)
}

// Shutdown stops the event loop. It is safe to call more than once and
// from any goroutine.
func (app *Application) Shutdown() {
	app.stopOnce.Do(func() {
		close(app.done)
	})
}

// Do runs fn on the event loop and returns its error. It blocks until the
// loop picks the work up, so it must not be called from the loop itself.
func (app *Application) Do(ctx context.Context, fn func(context.Context, *engine.Engine) error) error {
	t := task{fn: fn, result: make(chan error, 1)}
	select {
	case app.tasks <- t:
	case <-app.done:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-t.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ensureProfile creates the configured default profile on first run.
func (app *Application) ensureProfile(ctx context.Context) error {
	id := app.ProfileID()
	_, err := app.store.GetProfile(ctx, id)
	if err == nil || !errors.Is(err, storage.ErrProfileNotFound) || id != app.cfg.Profile.Default {
		return err
	}

	p, err := app.store.CreateProfile(ctx, "default", app.cfg.Hotkeys.SlotsPerProfile)
	if err != nil {
		return fmt.Errorf("creating default profile: %w", err)
	}
	if p.ID != id {
		app.cfg.Profile.Default = p.ID
		app.opts.ProfileID = p.ID
	}
	return nil
}

// release unregisters every binding and closes the registry.
func (app *Application) release() {
	if err := app.engine.Close(); err != nil {
		app.log.WithError(err).Warn("releasing hotkeys")
	}
	if err := app.reg.Close(); err != nil {
		app.log.WithError(err).Warn("closing registry")
	}
	for _, sub := range app.subs {
		_ = app.bus.Unsubscribe(sub)
	}
	app.subs = nil
	app.log.Info("hotkeys released")
}

func (app *Application) runTask(ctx context.Context, t task) {
	start := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				app.metrics.RecordPanic()
				err = &RecoveredPanicError{Value: r, Stack: string(debug.Stack())}
				app.log.WithField("panic", r).Error("task panicked")
			}
		}()
		return t.fn(ctx, app.engine)
	}()
	app.metrics.RecordTask(time.Since(start))
	t.result <- err
}

// loadActions replaces the action script. A script that fails to load is
// logged and hotkeys keep working without it.
func (app *Application) loadActions(cfg config.ActionsConfig) {
	app.closeActions()
	if cfg.Script == "" {
		return
	}
	s, err := action.Load(cfg.Script,
		action.WithTimeout(time.Duration(cfg.TimeoutMS)*time.Millisecond),
		action.WithLogger(WithComponent(app.log, "action")),
	)
	if err != nil {
		app.log.WithError(err).Warn("action script disabled")
		return
	}
	app.actions = s
	app.log.WithField("script", cfg.Script).Info("action script loaded")
}

func (app *Application) closeActions() {
	if app.actions != nil {
		app.actions.Close()
		app.actions = nil
	}
}

func busErrorHandler(log logrus.FieldLogger) event.ErrorHandler {
	return func(sub event.Subscription, err error) {
		log.WithField("pattern", sub.Pattern.String()).WithError(err).Warn("subscriber failed")
	}
}
