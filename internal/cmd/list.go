package cmd

import (
	"github.com/spf13/cobra"
)

// displayFilter returns the --display value when the flag was given.
func displayFilter(cmd *cobra.Command) *uint32 {
	if !cmd.Flags().Changed("display") {
		return nil
	}
	id, _ := cmd.Flags().GetUint32("display")
	return &id
}

func newListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all displays and their available modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.outputFormat(cmd)
			if err != nil {
				return err
			}
			verbose, _ := cmd.Flags().GetBool("verbose")

			svc, err := a.service()
			if err != nil {
				return err
			}
			reports, err := svc.List(displayFilter(cmd), verbose)
			if err != nil {
				return err
			}

			if format != "text" {
				return writeStructured(cmd.OutOrStdout(), format, reports)
			}
			writeReports(cmd.OutOrStdout(), reports, verbose)
			return nil
		},
	}
	cmd.Flags().BoolP("verbose", "v", false, "show all user-visible display modes")
	cmd.Flags().Uint32P("display", "d", 0, "only show this display ID")
	addOutputFlag(cmd)
	return cmd
}
