package subscribe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hoppxi/displayconfig/pkg/cgdisplay"
	log "github.com/sirupsen/logrus"
)

// DisplayEvent is one reconfiguration callback. Flags is the raw
// CGDisplayChangeSummaryFlags mask.
type DisplayEvent struct {
	ID    uint32
	Flags uint32
	Time  time.Time
}

const displayEventBuffer = 64

// DisplayEvents registers a reconfiguration callback and forwards every
// callback on the returned channel. When ctx is done the callback is
// removed and the channel closed.
func DisplayEvents(ctx context.Context, n cgdisplay.Notifier) (<-chan DisplayEvent, error) {
	events := make(chan DisplayEvent, displayEventBuffer)

	var (
		mu     sync.Mutex
		closed bool
	)
	unregister, err := n.RegisterReconfiguration(func(id, flags uint32) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case events <- DisplayEvent{ID: id, Flags: flags, Time: time.Now()}:
		default:
			log.WithField("display", id).Warn("subscribe: display event buffer full, dropping event")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register reconfiguration callback: %w", err)
	}
	log.Debug("subscribe: listening for display reconfiguration events")

	go func() {
		<-ctx.Done()
		unregister()

		mu.Lock()
		closed = true
		close(events)
		mu.Unlock()
		log.Debug("subscribe: display reconfiguration callback removed")
	}()

	return events, nil
}
