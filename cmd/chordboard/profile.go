package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newProfileCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage profiles",
	}
	cmd.AddCommand(
		newProfileListCmd(flags),
		newProfileCreateCmd(flags),
		newProfileRenameCmd(flags),
		newProfileDeleteCmd(flags),
	)
	return cmd
}

func newProfileListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer e.Close()

			profiles, err := e.store.ListProfiles(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSLOTS\tDEFAULT")
			for _, p := range profiles {
				mark := ""
				if p.ID == e.cfg.Profile.Default {
					mark = "*"
				}
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", p.ID, p.Name, p.Slots, mark)
			}
			return w.Flush()
		},
	}
}

func newProfileCreateCmd(flags *globalFlags) *cobra.Command {
	var slots int
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a profile of empty slots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer e.Close()

			n := slots
			if n == 0 {
				n = e.cfg.Hotkeys.SlotsPerProfile
			}
			p, err := e.store.CreateProfile(cmd.Context(), args[0], n)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created profile %d %q with %d slots\n", p.ID, p.Name, p.Slots)
			return nil
		},
	}
	cmd.Flags().IntVarP(&slots, "slots", "n", 0, "number of slots (default from config)")
	return cmd
}

func newProfileRenameCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rename ID NAME",
		Short: "Rename a profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer e.Close()
			return e.store.RenameProfile(cmd.Context(), id, args[1])
		},
	}
}

func newProfileDeleteCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a profile and its slots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer e.Close()
			return e.store.DeleteProfile(cmd.Context(), id)
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid profile id %q", s)
	}
	return id, nil
}
