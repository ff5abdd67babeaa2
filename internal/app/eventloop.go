package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/dshills/chordboard/internal/config"
	"github.com/dshills/chordboard/internal/config/watcher"
)

// eventLoop is the only goroutine that touches the engine.
func (app *Application) eventLoop(ctx context.Context, w *watcher.Watcher) error {
	var (
		changes <-chan watcher.Event
		werrs   <-chan error
	)
	if w != nil {
		changes, werrs = w.Events(), w.Errors()
	}

	for {
		select {
		case <-ctx.Done():
			app.log.Info("event loop cancelled")
			return nil

		case <-app.done:
			app.log.Info("event loop stopped")
			return nil

		case t := <-app.tasks:
			app.runTask(ctx, t)

		case f, ok := <-app.backend.Events():
			if !ok {
				app.log.Warn("hotkey backend closed")
				return nil
			}
			app.metrics.RecordFire()
			app.engine.OnSystemHotkey(ctx, f)

		case ev, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			if ev.Op == watcher.OpRemove || ev.Op == watcher.OpRename {
				app.log.WithField("path", ev.Path).Warn("config file removed; keeping current settings")
				continue
			}
			app.reload(ctx)

		case err, ok := <-werrs:
			if !ok {
				werrs = nil
				continue
			}
			app.log.WithError(err).Warn("config watcher")
		}
	}
}

// reload re-reads the config file and applies what can change at runtime:
// logging, the hotkeys.active toggle and the action script.
func (app *Application) reload(ctx context.Context) {
	cfg, err := config.Load(app.opts.ConfigPath)
	if err != nil {
		app.log.WithError(err).Warn("config reload failed; keeping current settings")
		return
	}
	app.metrics.RecordReload()
	app.apply(ctx, cfg)
}

func (app *Application) apply(ctx context.Context, cfg config.Config) {
	if err := ApplyLogConfig(app.log, cfg.Log); err != nil {
		app.log.WithError(err).Warn("log settings not applied")
	}
	// Only a changed setting is applied; a toggle made at runtime stands
	// until the file says otherwise.
	if cfg.Hotkeys.Active != app.cfg.Hotkeys.Active {
		if err := app.engine.SetActive(ctx, cfg.Hotkeys.Active); err != nil {
			app.log.WithError(err).Warn("hotkey toggle incomplete")
		}
	}
	if cfg.Actions != app.cfg.Actions {
		app.loadActions(cfg.Actions)
	}

	app.log.WithFields(logrus.Fields{
		"active": cfg.Hotkeys.Active,
		"level":  cfg.Log.Level,
	}).Info("config reloaded")
	app.cfg = cfg
}
