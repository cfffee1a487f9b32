package cmd

import (
	"fmt"

	"github.com/hoppxi/displayconfig/pkg/displayinfo"
	"github.com/hoppxi/displayconfig/pkg/operation"
	"github.com/spf13/cobra"
)

func newGetBrightnessCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get-brightness",
		Short: "Show the brightness of displays",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.outputFormat(cmd)
			if err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			reports, err := svc.Brightness(displayFilter(cmd))
			if err != nil {
				return err
			}
			if format != "text" {
				return writeStructured(cmd.OutOrStdout(), format, reports)
			}
			writeBrightness(cmd.OutOrStdout(), reports)
			return nil
		},
	}
	cmd.Flags().Uint32P("display", "d", 0, "only show this display ID")
	addOutputFlag(cmd)
	return cmd
}

func newSetBrightnessCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-brightness",
		Short: "Set the brightness percentage of a display",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetUint32("display")
			percent, _ := cmd.Flags().GetInt("brightness")
			if err := displayinfo.ValidatePercent(percent); err != nil {
				return err
			}

			svc, err := a.service()
			if err != nil {
				return err
			}
			change, err := operation.NewDisplay(svc).SetBrightness(id, percent)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "=== Setting Display Brightness ===\n\n")
			fmt.Fprintf(out, "Display ID: %d\n", id)
			if change.UUID != "" {
				fmt.Fprintf(out, "Persistent screen id: %s\n", change.UUID)
			}
			fmt.Fprintf(out, "Display Model: %d\n", change.Info.Model)
			fmt.Fprintf(out, "Is built-in: %t\n", change.Info.IsBuiltin)
			if change.Old.Supported {
				fmt.Fprintf(out, "Current brightness: %d%%\n", change.Old.Percent())
			}
			fmt.Fprintf(out, "New brightness: %d%%\n", change.New)
			fmt.Fprintf(out, "\nBrightness updated successfully!\n")
			return nil
		},
	}
	cmd.Flags().Uint32P("display", "d", 0, "display ID")
	cmd.Flags().IntP("brightness", "b", 0, "brightness percentage (0-100)")
	_ = cmd.MarkFlagRequired("display")
	_ = cmd.MarkFlagRequired("brightness")
	return cmd
}
