package cmd

import (
	"fmt"

	"github.com/hoppxi/displayconfig/pkg/operation"
	"github.com/spf13/cobra"
)

func newGetModeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get-mode",
		Short: "Print the current mode number of a display",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uuid, _ := cmd.Flags().GetString("display")
			svc, err := a.service()
			if err != nil {
				return err
			}
			n, err := svc.CurrentModeNumber(uuid)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
	cmd.Flags().StringP("display", "d", "", "persistent screen id (UUID)")
	_ = cmd.MarkFlagRequired("display")
	return cmd
}

func newSetModeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-mode",
		Short: "Switch a display to one of its mode numbers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uuid, _ := cmd.Flags().GetString("display")
			mode, _ := cmd.Flags().GetInt32("mode")

			svc, err := a.service()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "=== Setting Display Mode ===\n\n")

			change, err := operation.NewDisplay(svc).SetMode(uuid, mode)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Setting display %s (ID: %d) to mode #%d...\n", uuid, change.DisplayID, change.Mode)
			fmt.Fprintln(out, "✓ Successfully set display mode")
			return nil
		},
	}
	cmd.Flags().StringP("display", "d", "", "persistent screen id (UUID)")
	cmd.Flags().Int32P("mode", "m", 0, "mode number, as shown by list --verbose")
	_ = cmd.MarkFlagRequired("display")
	_ = cmd.MarkFlagRequired("mode")
	return cmd
}
