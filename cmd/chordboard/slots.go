package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/chordboard/internal/engine"
	"github.com/dshills/chordboard/internal/input/key"
)

func newSlotsCmd(flags *globalFlags) *cobra.Command {
	var profileID int64
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List a profile's slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer e.Close()

			slots, err := e.store.LoadSlots(cmd.Context(), e.profileID(profileID))
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SLOT\tCHORD\tLABEL\tPAYLOAD")
			for _, s := range slots {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Ordinal, s.Chord, s.Label, s.Payload)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int64VarP(&profileID, "profile", "p", 0, "profile (default from config)")
	return cmd
}

// slotAction edits one profile through an offline engine.
type slotAction func(ctx context.Context, eng *engine.Engine, ordinal int, args []string) (string, error)

func newSlotCmd(flags *globalFlags) *cobra.Command {
	var profileID int64
	cmd := &cobra.Command{
		Use:   "slot",
		Short: "Edit a slot",
	}
	cmd.PersistentFlags().Int64VarP(&profileID, "profile", "p", 0, "profile (default from config)")

	sub := func(use, short string, nargs int, act slotAction) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(nargs),
			RunE: func(cmd *cobra.Command, args []string) error {
				ordinal, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid slot %q", args[0])
				}
				e, err := setup(cmd, flags)
				if err != nil {
					return err
				}
				defer e.Close()

				eng, err := e.offlineEngine(cmd.Context(), e.profileID(profileID))
				if err != nil {
					return err
				}
				msg, err := act(cmd.Context(), eng, ordinal, args[1:])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			},
		}
	}

	cmd.AddCommand(
		sub("label SLOT TEXT", "Set a slot's label", 2, func(ctx context.Context, eng *engine.Engine, n int, args []string) (string, error) {
			return fmt.Sprintf("slot %d labelled", n), eng.SetLabel(ctx, n, args[0])
		}),
		sub("payload SLOT FILE", "Set a slot's sound file; the label follows the file name", 2, func(ctx context.Context, eng *engine.Engine, n int, args []string) (string, error) {
			return fmt.Sprintf("slot %d plays %s", n, args[0]), eng.SetPayload(ctx, n, args[0])
		}),
		sub("clear SLOT", "Clear a slot's label and payload", 1, func(ctx context.Context, eng *engine.Engine, n int, _ []string) (string, error) {
			return fmt.Sprintf("slot %d cleared", n), eng.ClearSlot(ctx, n)
		}),
		sub("bind SLOT CHORD", `Bind a chord such as "CTRL + F1"`, 2, bindSlot),
		sub("unbind SLOT", "Remove a slot's chord", 1, func(ctx context.Context, eng *engine.Engine, n int, _ []string) (string, error) {
			return fmt.Sprintf("slot %d unbound", n), eng.Unassign(ctx, n)
		}),
		newClearAllCmd(flags, &profileID),
	)
	return cmd
}

func bindSlot(ctx context.Context, eng *engine.Engine, n int, args []string) (string, error) {
	c, err := key.ParseChord(args[0])
	if err != nil {
		return "", err
	}
	out, err := eng.Assign(ctx, n, c)
	if err != nil && !errors.Is(err, engine.ErrInvariantViolation) {
		return "", err
	}
	msg := fmt.Sprintf("slot %d: %s", n, c)
	if out.Swapped() {
		msg += fmt.Sprintf(" (swapped with slot %d)", out.Partner)
	}
	return msg, err
}

func newClearAllCmd(flags *globalFlags, profileID *int64) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-all",
		Short: "Clear every slot's label and payload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer e.Close()

			eng, err := e.offlineEngine(cmd.Context(), e.profileID(*profileID))
			if err != nil {
				return err
			}
			return eng.ClearAll(cmd.Context())
		},
	}
}

func newCheckCmd(flags *globalFlags) *cobra.Command {
	var profileID int64
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify that no chord is bound to more than one slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer e.Close()

			eng, err := e.offlineEngine(cmd.Context(), e.profileID(profileID))
			if err != nil {
				return err
			}
			if err := eng.Check(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	cmd.Flags().Int64VarP(&profileID, "profile", "p", 0, "profile (default from config)")
	return cmd
}
