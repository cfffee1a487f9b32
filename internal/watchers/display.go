package watchers

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/hoppxi/displayconfig/internal/manager"
	"github.com/hoppxi/displayconfig/internal/publish"
	"github.com/hoppxi/displayconfig/internal/subscribe"
	"github.com/hoppxi/displayconfig/pkg/cgdisplay"
	"github.com/hoppxi/displayconfig/pkg/displayinfo"
	"github.com/hoppxi/displayconfig/pkg/objcrt"
	log "github.com/sirupsen/logrus"
)

const defaultPumpInterval = 100 * time.Millisecond

// EventPublisher receives every reconfiguration the watcher reports.
type EventPublisher interface {
	PublishDisplayEvent(publish.DisplayEvent) error
}

type DisplayWatcher struct {
	Service *displayinfo.Service
	Out     io.Writer

	// Publisher, when set, gets a copy of each event.
	Publisher EventPublisher
	// Reload carries new settings after a config file edit.
	Reload <-chan manager.Settings
	// Poll enables a fallback that compares display modes on an interval,
	// for sessions where callbacks are never delivered.
	Poll time.Duration
	// Pump bounds one run loop slice.
	Pump time.Duration
}

// StartDisplayWatcher prints the active displays and then one block per
// reconfiguration until ctx is done. It must run on the goroutine locked
// to the main thread: the run loop is pumped here and events are handled
// between pumps.
func StartDisplayWatcher(ctx context.Context, w DisplayWatcher) error {
	svc := w.Service
	ids, err := svc.ActiveDisplays(nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(w.Out, "Watching for display configuration changes via CGDisplayRegisterReconfigurationCallback...")
	fmt.Fprintf(w.Out, "Initial active displays: %v\n", ids)

	events, err := subscribe.DisplayEvents(ctx, svc.Public)
	if err != nil {
		return err
	}

	pump := w.Pump
	if pump <= 0 {
		pump = defaultPumpInterval
	}

	var (
		pollC <-chan time.Time
		last  map[uint32]modeState
	)
	if w.Poll > 0 {
		ticker := time.NewTicker(w.Poll)
		defer ticker.Stop()
		pollC = ticker.C
		last = captureState(svc.Public)
	}

	reload := w.Reload
	for {
		select {
		case <-ctx.Done():
			for range events {
			}
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			w.report(fmt.Sprintf("[callback] Display reconfiguration: id=%d flags=0x%x", ev.ID, ev.Flags), ev)
			continue
		case s, ok := <-reload:
			if !ok {
				reload = nil
				continue
			}
			svc.Tolerance = s.Match
			log.WithField("tolerance", s.Match).Info("match tolerances reloaded")
			continue
		case now := <-pollC:
			current := captureState(svc.Public)
			for _, id := range changedDisplays(last, current) {
				w.report(fmt.Sprintf("[poll] Display state changed: id=%d", id), subscribe.DisplayEvent{ID: id, Time: now})
			}
			last = current
			continue
		default:
		}
		svc.Public.RunLoopOnce(pump)
	}
}

func (w DisplayWatcher) report(header string, ev subscribe.DisplayEvent) {
	objcrt.WithAutoreleasePool(func() {
		svc := w.Service
		fmt.Fprintln(w.Out, header)

		payload := publish.DisplayEvent{DisplayID: ev.ID, Flags: ev.Flags, Time: ev.Time}
		if m, ok := svc.Public.CurrentMode(ev.ID); ok {
			fmt.Fprintf(w.Out, "  Current mode: %dx%d @ %.2fHz\n", m.Width, m.Height, m.RefreshRate)
			payload.Width, payload.Height, payload.RefreshRate = m.Width, m.Height, m.RefreshRate
		} else {
			fmt.Fprintln(w.Out, "  Current mode: (none)")
		}
		if m, ok := svc.ResolveCurrentMode(ev.ID); ok {
			fmt.Fprintf(w.Out, "  MonitorPanel mode: #%d\n", m.Number)
			n := m.Number
			payload.ModeNumber = &n
		}

		if w.Publisher == nil {
			return
		}
		if err := w.Publisher.PublishDisplayEvent(payload); err != nil {
			log.WithError(err).WithField("display", ev.ID).Warn("failed to publish display event")
		}
	})
}

type modeState struct {
	mode cgdisplay.Mode
	ok   bool
}

func captureState(src cgdisplay.Source) map[uint32]modeState {
	state := map[uint32]modeState{}
	ids, err := src.ActiveDisplays()
	if err != nil {
		log.WithError(err).Debug("poll: failed to list displays")
		return state
	}
	for _, id := range ids {
		m, ok := src.CurrentMode(id)
		state[id] = modeState{mode: m, ok: ok}
	}
	return state
}

// changedDisplays lists IDs that appeared, disappeared or changed mode,
// in ascending order.
func changedDisplays(before, after map[uint32]modeState) []uint32 {
	var ids []uint32
	for id, s := range after {
		if prev, ok := before[id]; !ok || prev != s {
			ids = append(ids, id)
		}
	}
	for id := range before {
		if _, ok := after[id]; !ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}
