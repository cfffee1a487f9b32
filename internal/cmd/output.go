package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hoppxi/displayconfig/pkg/displayinfo"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "output format: text, json or yaml (default from config)")
}

func (a *app) outputFormat(cmd *cobra.Command) (string, error) {
	format := a.settings.Output
	if f, _ := cmd.Flags().GetString("output"); f != "" {
		format = f
	}
	switch format {
	case "text", "json", "yaml":
		return format, nil
	}
	return "", fmt.Errorf("invalid output format %q: must be text, json or yaml", format)
}

func writeStructured(w io.Writer, format string, v any) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func writeReports(w io.Writer, reports []displayinfo.Report, verbose bool) {
	fmt.Fprintf(w, "=== Display Information ===\n\n")
	fmt.Fprintf(w, "Found %d active display(s):\n\n", len(reports))

	for _, r := range reports {
		fmt.Fprintf(w, "Display %d:\n", r.Index)
		fmt.Fprintf(w, "  Contextual screen id: %d\n", r.ID)
		if r.UUID != "" {
			fmt.Fprintf(w, "  Persistent screen id: %s\n", r.UUID)
		}
		if r.Name != "" {
			fmt.Fprintf(w, "  Name: %s\n", r.Name)
		}
		fmt.Fprintf(w, "  Display Model: %d\n", r.Model)
		fmt.Fprintf(w, "  Width: %d pixels\n", r.PixelsWide)
		fmt.Fprintf(w, "  Height: %d pixels\n", r.PixelsHigh)
		fmt.Fprintf(w, "  Is main: %t\n", r.IsMain)
		fmt.Fprintf(w, "  Is built-in: %t\n", r.IsBuiltin)
		if m := r.CurrentMode; m != nil {
			fmt.Fprintf(w, "  Current mode:\n")
			fmt.Fprintf(w, "    Width: %d\n", m.Width)
			fmt.Fprintf(w, "    Height: %d\n", m.Height)
			fmt.Fprintf(w, "    Refresh rate: %.2f Hz\n", m.RefreshRate)
		}

		if verbose {
			writeModes(w, r)
		} else {
			fmt.Fprintf(w, "  Use --verbose to see all available display modes\n")
		}
		fmt.Fprintln(w)
	}
}

func writeModes(w io.Writer, r displayinfo.Report) {
	fmt.Fprintf(w, "  Available modes:\n")
	if r.Modes == nil {
		fmt.Fprintf(w, "    %s\n", r.ModesNote)
		return
	}

	fmt.Fprintf(w, "    Found %d total modes\n\n", r.Modes.Total)
	if len(r.Modes.HiDPI) > 0 {
		fmt.Fprintf(w, "    HiDPI/Retina Modes:\n")
		for _, e := range r.Modes.HiDPI {
			fmt.Fprintf(w, "      %s\n", displayinfo.FormatMode(e))
		}
		fmt.Fprintln(w)
	}
	if len(r.Modes.Standard) > 0 {
		fmt.Fprintf(w, "    Standard Modes:\n")
		for _, e := range r.Modes.Standard {
			fmt.Fprintf(w, "      %s\n", displayinfo.FormatMode(e))
		}
	}
}

func writeBrightness(w io.Writer, reports []displayinfo.BrightnessReport) {
	fmt.Fprintf(w, "=== Display Brightness Information ===\n\n")
	fmt.Fprintf(w, "Found %d active display(s):\n\n", len(reports))

	for _, r := range reports {
		fmt.Fprintf(w, "Display %d:\n", r.Index)
		fmt.Fprintf(w, "  Contextual screen id: %d\n", r.ID)
		if r.UUID != "" {
			fmt.Fprintf(w, "  Persistent screen id: %s\n", r.UUID)
		}
		fmt.Fprintf(w, "  Display Model: %d\n", r.Model)
		fmt.Fprintf(w, "  Is built-in: %t\n", r.IsBuiltin)
		fmt.Fprintf(w, "  Brightness: %s\n\n", r.Brightness)
	}
}
