package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dshills/chordboard/internal/app"
	"github.com/dshills/chordboard/internal/config"
	"github.com/dshills/chordboard/internal/event"
	"github.com/dshills/chordboard/internal/hotkey"
	"github.com/dshills/chordboard/internal/hotkey/system"
	"github.com/dshills/chordboard/internal/ui"
)

func newRunCmd(flags *globalFlags) *cobra.Command {
	var (
		profileID int64
		tui       bool
		watch     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Register hotkeys and listen until interrupted",
		Long: `Register the profile's chords system-wide and report each press.

Without --tui every press is printed as "CHORD<TAB>LABEL<TAB>PAYLOAD". With
--tui the board opens in the terminal and chords are bound by typing them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer e.Close()
			if tui {
				// The board owns the terminal.
				e.log.SetOutput(io.Discard)
			}

			backend := newBackend(e.log)
			defer backend.Close()

			path := flags.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			a, err := app.New(e.cfg, e.store, backend, e.log, app.Options{
				ConfigPath:  path,
				WatchConfig: watch,
				ProfileID:   profileID,
			})
			if err != nil {
				return err
			}
			if !tui {
				if _, err := a.Bus().Subscribe(event.TopicBindingFired, printFired(cmd.OutOrStdout())); err != nil {
					return err
				}
			}

			errc := make(chan error, 1)
			go func() { errc <- a.Run(ctx) }()
			if !tui {
				return <-errc
			}
			return runBoard(ctx, a, e.log, errc)
		},
	}

	cmd.Flags().Int64VarP(&profileID, "profile", "p", 0, "profile to load (default from config)")
	cmd.Flags().BoolVar(&tui, "tui", false, "open the terminal board")
	cmd.Flags().BoolVar(&watch, "watch", true, "reload the config file when it changes")
	return cmd
}

// runBoard shows the board until it quits, then stops the loop.
func runBoard(ctx context.Context, a *app.Application, log logrus.FieldLogger, errc <-chan error) error {
	term, err := ui.NewTerminal()
	if err != nil {
		a.Shutdown()
		return errors.Join(fmt.Errorf("terminal: %w", err), <-errc)
	}

	uerr := ui.New(term, a, log).Run(ctx)
	a.Shutdown()
	lerr := <-errc
	if errors.Is(uerr, app.ErrNotRunning) {
		// The loop failed first; its error says why.
		uerr = nil
	}
	return errors.Join(lerr, uerr)
}

func newBackend(log logrus.FieldLogger) app.Backend {
	be, err := system.New(log)
	if err == nil {
		return be
	}
	log.WithError(err).Warn("global hotkeys unavailable; chords only fire inside chordboard")
	return hotkey.NewMemoryBackend()
}

func printFired(w io.Writer) event.HandlerFunc {
	return func(_ context.Context, ev any) error {
		e, ok := ev.(event.Event[event.BindingFired])
		if !ok {
			return nil
		}
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\n", e.Payload.Chord, e.Payload.Label, e.Payload.Payload)
		return err
	}
}
