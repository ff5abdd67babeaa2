package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dshills/chordboard/internal/app"
	"github.com/dshills/chordboard/internal/config"
	"github.com/dshills/chordboard/internal/engine"
	"github.com/dshills/chordboard/internal/hotkey"
	"github.com/dshills/chordboard/internal/storage"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "chordboard",
		Short: "Global hotkey soundboard",
		Long: `chordboard binds keyboard chords to command slots and listens for them
system-wide. Chords are one or two of CTRL, ALT and SHIFT plus a key.

Examples:
  chordboard run                     Register the default profile's hotkeys
  chordboard run --tui               Open the board to capture chords
  chordboard slot bind 3 "CTRL + F1" Bind a chord without the board
  chordboard export board.yaml       Save the default profile`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to configuration file")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override the configured log level")

	cmd.AddCommand(
		newRunCmd(flags),
		newProfileCmd(flags),
		newSlotsCmd(flags),
		newSlotCmd(flags),
		newCheckCmd(flags),
		newExportCmd(flags),
		newImportCmd(flags),
	)
	return cmd
}

// env is what every command needs: settings, a logger and the store.
type env struct {
	cfg   config.Config
	log   *logrus.Logger
	store *storage.Store
}

func setup(cmd *cobra.Command, flags *globalFlags) (*env, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}

	log, err := app.NewLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(cmd.Context(), cfg.Storage.Path, storage.WithLogger(app.WithComponent(log, "storage")))
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: log, store: store}
	if err := e.ensureDefault(cmd.Context()); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// ensureDefault creates the default profile on first use of a store.
func (e *env) ensureDefault(ctx context.Context) error {
	_, err := e.store.GetProfile(ctx, e.cfg.Profile.Default)
	if !errors.Is(err, storage.ErrProfileNotFound) {
		return err
	}
	profiles, err := e.store.ListProfiles(ctx)
	if err != nil || len(profiles) > 0 {
		return err
	}
	p, err := e.store.CreateProfile(ctx, "default", e.cfg.Hotkeys.SlotsPerProfile)
	if err != nil {
		return err
	}
	e.cfg.Profile.Default = p.ID
	return nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.log.WithError(err).Warn("closing store")
	}
}

// profileID resolves a --profile flag against the configured default.
func (e *env) profileID(flag int64) int64 {
	if flag != 0 {
		return flag
	}
	return e.cfg.Profile.Default
}

// offlineEngine loads a profile into an engine whose registry never talks
// to the OS, for editing slots outside the event loop.
func (e *env) offlineEngine(ctx context.Context, profileID int64) (*engine.Engine, error) {
	reg := hotkey.NewRegistry(hotkey.NewMemoryBackend(),
		hotkey.WithLogger(app.WithComponent(e.log, "hotkey")),
		hotkey.WithActive(false),
	)
	eng := engine.New(reg, e.store, engine.WithLogger(e.log))
	if err := eng.LoadProfile(ctx, profileID); err != nil {
		return nil, err
	}
	return eng, nil
}
