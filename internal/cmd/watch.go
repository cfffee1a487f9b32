package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hoppxi/displayconfig/internal/publish"
	"github.com/hoppxi/displayconfig/internal/subscribe"
	"github.com/hoppxi/displayconfig/internal/watchers"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch for display configuration changes and print events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, cmd)
		},
	}
	cmd.Flags().Duration("poll", 0, "also compare display modes on this interval (0 disables)")
	return cmd
}

func (a *app) watch(ctx context.Context, cmd *cobra.Command) error {
	svc, err := a.service()
	if err != nil {
		return err
	}
	poll, _ := cmd.Flags().GetDuration("poll")

	w := watchers.DisplayWatcher{
		Service: svc,
		Out:     cmd.OutOrStdout(),
		Reload:  subscribe.ConfigEvents(ctx, a.config),
		Poll:    poll,
	}

	if mqtt := a.settings.MQTT; mqtt.Enabled() {
		p, err := publish.Connect(mqtt)
		if err != nil {
			log.WithError(err).Warn("watch events will not be published")
		} else {
			defer p.Close()
			w.Publisher = p
		}
	}

	return watchers.StartDisplayWatcher(ctx, w)
}
