package app

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/chordboard/internal/config"
	"github.com/dshills/chordboard/internal/engine"
	"github.com/dshills/chordboard/internal/event"
	"github.com/dshills/chordboard/internal/hotkey"
	"github.com/dshills/chordboard/internal/input/key"
	"github.com/dshills/chordboard/internal/storage"
)

type fixture struct {
	app   *Application
	be    *hotkey.MemoryBackend
	store *storage.Store
	errc  chan error
	stop  context.CancelFunc
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.Hotkeys.SlotsPerProfile = 4
	cfg.Storage.Path = filepath.Join(t.TempDir(), "test.db")
	return cfg
}

func newFixture(t *testing.T, cfg config.Config, opts Options) *fixture {
	t.Helper()
	store, err := storage.Open(context.Background(), cfg.Storage.Path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	be := hotkey.NewMemoryBackend()
	app, err := New(cfg, store, be, quietLogger(), opts)
	require.NoError(t, err)
	return &fixture{app: app, be: be, store: store}
}

// start runs the loop in the background and waits until it accepts work.
func (f *fixture) start(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	f.stop = cancel
	f.errc = make(chan error, 1)
	go func() { f.errc <- f.app.Run(ctx) }()

	require.NoError(t, f.do(t, func(context.Context, *engine.Engine) error { return nil }))
	t.Cleanup(func() { f.shutdown(t) })
}

func (f *fixture) do(t *testing.T, fn func(context.Context, *engine.Engine) error) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return f.app.Do(ctx, fn)
}

func (f *fixture) shutdown(t *testing.T) {
	t.Helper()
	if f.stop == nil {
		return
	}
	f.stop()
	f.stop = nil
	select {
	case err := <-f.errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("event loop did not stop")
	}
}

func TestNewRequiresLogger(t *testing.T) {
	_, err := New(config.Default(), nil, hotkey.NewMemoryBackend(), nil, Options{})

	var ie *InitError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "logger", ie.Component)
}

func TestRunCreatesDefaultProfile(t *testing.T) {
	f := newFixture(t, testConfig(t), Options{})
	f.start(t)

	assert.True(t, f.app.IsRunning())
	assert.Equal(t, int64(1), f.app.ProfileID())

	p, err := f.store.GetProfile(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "default", p.Name)
	assert.Equal(t, 4, p.Slots)
}

func TestRunUnknownProfileOverride(t *testing.T) {
	f := newFixture(t, testConfig(t), Options{ProfileID: 9})

	err := f.app.Run(context.Background())

	var ie *InitError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "profile", ie.Component)
	assert.ErrorIs(t, err, storage.ErrProfileNotFound)
	assert.False(t, f.app.IsRunning())
}

func TestRunTwice(t *testing.T) {
	f := newFixture(t, testConfig(t), Options{})
	f.start(t)

	assert.ErrorIs(t, f.app.Run(context.Background()), ErrAlreadyRunning)
}

func TestAssignPersistsAndReleasesOnExit(t *testing.T) {
	f := newFixture(t, testConfig(t), Options{})
	f.start(t)
	chord := key.MustParseChord("CTRL + A")

	err := f.do(t, func(ctx context.Context, e *engine.Engine) error {
		_, err := e.Assign(ctx, 2, chord)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.be.Live())

	f.shutdown(t)
	assert.Equal(t, 0, f.be.Live())
	assert.False(t, f.app.IsRunning())

	slots, err := f.store.LoadSlots(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, chord, slots[1].Chord)
}

func TestPressFiresBinding(t *testing.T) {
	f := newFixture(t, testConfig(t), Options{})
	fired := make(chan event.BindingFired, 1)
	_, err := f.app.Bus().Subscribe(event.TopicBindingFired, func(_ context.Context, ev any) error {
		fired <- ev.(event.Event[event.BindingFired]).Payload
		return nil
	})
	require.NoError(t, err)
	f.start(t)

	chord := key.MustParseChord("CTRL + SHIFT + F1")
	require.NoError(t, f.do(t, func(ctx context.Context, e *engine.Engine) error {
		if err := e.SetLabel(ctx, 3, "Airhorn"); err != nil {
			return err
		}
		_, err := e.Assign(ctx, 3, chord)
		return err
	}))

	require.True(t, f.be.Press(chord))
	select {
	case got := <-fired:
		assert.Equal(t, 3, got.Slot)
		assert.Equal(t, "Airhorn", got.Label)
	case <-time.After(5 * time.Second):
		t.Fatal("binding did not fire")
	}
	assert.Equal(t, uint64(1), f.app.Metrics().Snapshot().Fired)
}

func TestDoAfterShutdown(t *testing.T) {
	f := newFixture(t, testConfig(t), Options{})
	f.app.Shutdown()
	f.app.Shutdown()

	err := f.app.Do(context.Background(), func(context.Context, *engine.Engine) error { return nil })
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestShutdownStopsRun(t *testing.T) {
	f := newFixture(t, testConfig(t), Options{})
	f.start(t)

	f.app.Shutdown()
	select {
	case err := <-f.errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("event loop did not stop")
	}
	f.stop()
	f.stop = nil
}

func TestDoCancelled(t *testing.T) {
	f := newFixture(t, testConfig(t), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.app.Do(ctx, func(context.Context, *engine.Engine) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTaskErrorAndPanic(t *testing.T) {
	f := newFixture(t, testConfig(t), Options{})
	f.start(t)
	boom := errors.New("boom")

	assert.ErrorIs(t, f.do(t, func(context.Context, *engine.Engine) error { return boom }), boom)

	err := f.do(t, func(context.Context, *engine.Engine) error { panic("bad task") })
	var pe *RecoveredPanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "bad task", pe.Value)

	// The loop survives the panic.
	assert.NoError(t, f.do(t, func(context.Context, *engine.Engine) error { return nil }))

	snap := f.app.Metrics().Snapshot()
	assert.Equal(t, uint64(1), snap.Panics)
	assert.GreaterOrEqual(t, snap.Tasks, uint64(4))
}

func TestReloadAppliesActiveAndLogLevel(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[hotkeys]
active = false
slots_per_profile = 4

[storage]
path = "`+filepath.ToSlash(cfg.Storage.Path)+`"

[log]
level = "debug"
`), 0o644))

	f := newFixture(t, cfg, Options{ConfigPath: path})
	f.start(t)
	require.NoError(t, f.do(t, func(ctx context.Context, e *engine.Engine) error {
		_, err := e.Assign(ctx, 1, key.MustParseChord("ALT + Z"))
		return err
	}))
	require.Equal(t, 1, f.be.Live())

	require.NoError(t, f.do(t, func(ctx context.Context, _ *engine.Engine) error {
		f.app.reload(ctx)
		return nil
	}))

	assert.Equal(t, 0, f.be.Live())
	assert.False(t, f.app.Config().Hotkeys.Active)
	assert.Equal(t, logrus.DebugLevel, f.app.log.GetLevel())
	assert.Equal(t, uint64(1), f.app.Metrics().Snapshot().Reloads)
}

func TestReloadKeepsRuntimeToggle(t *testing.T) {
	cfg := testConfig(t)
	require.True(t, cfg.Hotkeys.Active)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[hotkeys]
active = true
slots_per_profile = 4

[storage]
path = "`+filepath.ToSlash(cfg.Storage.Path)+`"

[log]
level = "debug"
`), 0o644))

	f := newFixture(t, cfg, Options{ConfigPath: path})
	f.start(t)
	require.NoError(t, f.do(t, func(ctx context.Context, e *engine.Engine) error {
		if _, err := e.Assign(ctx, 1, key.MustParseChord("ALT + Z")); err != nil {
			return err
		}
		return e.SetActive(ctx, false)
	}))
	require.Equal(t, 0, f.be.Live())

	var active bool
	require.NoError(t, f.do(t, func(ctx context.Context, e *engine.Engine) error {
		f.app.reload(ctx)
		active = e.IsActive()
		return nil
	}))

	assert.False(t, active)
	assert.Equal(t, 0, f.be.Live())
	assert.Equal(t, logrus.DebugLevel, f.app.log.GetLevel())
	assert.Equal(t, uint64(1), f.app.Metrics().Snapshot().Reloads)
}

func TestReloadKeepsSettingsOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[hotkeys\n"), 0o644))

	f := newFixture(t, testConfig(t), Options{ConfigPath: path})
	f.start(t)
	require.NoError(t, f.do(t, func(ctx context.Context, _ *engine.Engine) error {
		f.app.reload(ctx)
		return nil
	}))

	assert.True(t, f.app.Config().Hotkeys.Active)
	assert.Equal(t, uint64(0), f.app.Metrics().Snapshot().Reloads)
}

func TestDoAfterFailedRun(t *testing.T) {
	f := newFixture(t, testConfig(t), Options{ProfileID: 5})
	require.Error(t, f.app.Run(context.Background()))

	err := f.app.Do(context.Background(), func(context.Context, *engine.Engine) error { return nil })
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestActionScriptRunsOnPress(t *testing.T) {
	cfg := testConfig(t)
	cfg.Actions.Script = filepath.Join(t.TempDir(), "actions.lua")
	require.NoError(t, os.WriteFile(cfg.Actions.Script, []byte(`
function on_fire(ev)
  if ev.label == "Broken" then
    error("cannot play " .. ev.payload)
  end
end
`), 0o644))

	f := newFixture(t, cfg, Options{})
	f.start(t)
	ok := key.MustParseChord("ALT + F1")
	broken := key.MustParseChord("ALT + F2")
	require.NoError(t, f.do(t, func(ctx context.Context, e *engine.Engine) error {
		if err := e.SetLabel(ctx, 2, "Broken"); err != nil {
			return err
		}
		if _, err := e.Assign(ctx, 1, ok); err != nil {
			return err
		}
		_, err := e.Assign(ctx, 2, broken)
		return err
	}))
	require.NotNil(t, f.app.actions)

	require.True(t, f.be.Press(ok))
	require.True(t, f.be.Press(broken))
	require.Eventually(t, func() bool {
		return f.app.Metrics().Snapshot().Fired == 2
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, f.do(t, func(context.Context, *engine.Engine) error { return nil }))
	assert.Equal(t, uint64(1), f.app.Metrics().Snapshot().ActionErrors)
}

func TestBadActionScriptIsSkipped(t *testing.T) {
	cfg := testConfig(t)
	cfg.Actions.Script = filepath.Join(t.TempDir(), "missing.lua")

	f := newFixture(t, cfg, Options{})
	f.start(t)

	assert.Nil(t, f.app.actions)
	assert.True(t, f.app.IsRunning())
}
