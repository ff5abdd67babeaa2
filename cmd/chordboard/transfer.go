package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/chordboard/internal/profile"
)

func newExportCmd(flags *globalFlags) *cobra.Command {
	var profileID int64
	cmd := &cobra.Command{
		Use:   "export [FILE]",
		Short: "Write a profile as YAML (stdout without FILE)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer e.Close()

			id := e.profileID(profileID)
			p, err := e.store.GetProfile(cmd.Context(), id)
			if err != nil {
				return err
			}
			slots, err := e.store.LoadSlots(cmd.Context(), id)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if len(args) == 1 {
				f, err := os.Create(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return profile.NewDocument(p.Name, slots).Encode(w)
		},
	}
	cmd.Flags().Int64VarP(&profileID, "profile", "p", 0, "profile (default from config)")
	return cmd
}

func newImportCmd(flags *globalFlags) *cobra.Command {
	var profileID int64
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace a profile's slots with a YAML document",
		Long: `Replace a profile's slots with a YAML document written by export.
Slots the document does not mention are cleared. The import is refused if
the document binds a chord twice or names a slot the profile lacks.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			doc, err := profile.Decode(f)
			if err != nil {
				return err
			}

			e, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer e.Close()

			id := e.profileID(profileID)
			current, err := e.store.LoadSlots(cmd.Context(), id)
			if err != nil {
				return err
			}
			slots, err := doc.Apply(id, current)
			if err != nil {
				return err
			}
			if err := e.store.SaveSlots(cmd.Context(), id, slots); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d slots into profile %d\n", len(doc.Slots), id)
			return nil
		},
	}
	cmd.Flags().Int64VarP(&profileID, "profile", "p", 0, "profile (default from config)")
	return cmd
}
