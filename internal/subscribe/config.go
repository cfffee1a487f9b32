package subscribe

import (
	"context"
	"sync"

	"github.com/hoppxi/displayconfig/internal/manager"
	log "github.com/sirupsen/logrus"
)

// ConfigEvents delivers the new settings each time the config file
// changes. Only the latest unread settings are kept.
func ConfigEvents(ctx context.Context, c *manager.ConfigManager) <-chan manager.Settings {
	events := make(chan manager.Settings, 1)

	var (
		mu     sync.Mutex
		closed bool
	)
	c.Watch(func(s manager.Settings) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case <-events:
		default:
		}
		events <- s
	})
	if path := c.Used(); path != "" {
		log.WithField("path", path).Debug("subscribe: listening for config file changes")
	}

	go func() {
		<-ctx.Done()
		mu.Lock()
		closed = true
		close(events)
		mu.Unlock()
	}()

	return events
}
