package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/hoppxi/displayconfig/internal/manager"
	"github.com/hoppxi/displayconfig/pkg/cgdisplay"
	"github.com/hoppxi/displayconfig/pkg/displayinfo"
	"github.com/hoppxi/displayconfig/pkg/monitorpanel"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var Version = "0.1.0"

// Framework entry points, replaced in tests.
var (
	openSystem = cgdisplay.Open
	openPanel  = monitorpanel.Open
)

const skipSettings = "skip-settings"

// app is the state shared by one command tree.
type app struct {
	configPath string
	logLevel   string

	config   *manager.ConfigManager
	settings manager.Settings
}

func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:               "displayconfig",
		Version:           Version,
		Short:             "Display management utility for macOS",
		Long:              "displayconfig lists displays and their modes, switches modes and controls brightness through CoreGraphics, CoreDisplay and MonitorPanel.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default <UserConfigDir>/displayconfig/displayconfig.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	root.AddCommand(
		newListCmd(a),
		newGetModeCmd(a),
		newSetModeCmd(a),
		newGetBrightnessCmd(a),
		newSetBrightnessCmd(a),
		newWatchCmd(a),
		newConfigCmd(a),
	)
	return root
}

func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		if hint := displayinfo.Hint(err); hint != "" {
			fmt.Fprintln(stderr, hint)
		}
		return 1
	}
	return 0
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	log.SetOutput(cmd.ErrOrStderr())
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})

	a.config = &manager.ConfigManager{Path: a.configPath}
	if cmd.Annotations[skipSettings] == "true" {
		a.settings = manager.Defaults()
	} else {
		s, err := a.config.Settings()
		if err != nil {
			return err
		}
		a.settings = s
	}

	level := a.settings.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	log.SetLevel(lvl)
	return nil
}

// service opens the frameworks for one command.
func (a *app) service() (*displayinfo.Service, error) {
	sys, err := openSystem()
	if err != nil {
		return nil, err
	}
	panel := openPanel()
	if !monitorpanel.IsAvailable(panel) {
		log.Debug("MonitorPanel manager not available")
	}
	return &displayinfo.Service{Public: sys, Panel: panel, Tolerance: a.settings.Match}, nil
}
