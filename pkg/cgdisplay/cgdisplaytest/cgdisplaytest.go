// Package cgdisplaytest provides an in-memory cgdisplay.System that counts
// framework calls and lets tests inject reconfiguration events.
package cgdisplaytest

import (
	"errors"
	"sync"
	"time"

	"github.com/hoppxi/displayconfig/pkg/cgdisplay"
)

type Display struct {
	Info cgdisplay.Info
	// Mode is the current public mode; nil when CoreGraphics reports none.
	Mode *cgdisplay.Mode
	// Brightness is the stored user brightness. Values outside [0, 1]
	// mean unsupported.
	Brightness float64
}

// Event is a queued reconfiguration callback.
type Event struct {
	ID    uint32
	Flags uint32
}

type System struct {
	Displays []*Display
	ListErr  error

	BrightnessReads  int
	BrightnessWrites int
	ListCalls        int

	mu         sync.Mutex
	handlers   map[int]func(id, flags uint32)
	next       int
	pending    []Event
	Registered int
	Removed    int
	// OnRunLoop runs after queued events are delivered by RunLoopOnce.
	OnRunLoop func()
}

var _ cgdisplay.System = (*System)(nil)

func (s *System) find(id uint32) *Display {
	for _, d := range s.Displays {
		if d.Info.ID == id {
			return d
		}
	}
	return nil
}

func (s *System) ActiveDisplays() ([]uint32, error) {
	s.ListCalls++
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	ids := make([]uint32, 0, len(s.Displays))
	for _, d := range s.Displays {
		ids = append(ids, d.Info.ID)
	}
	return ids, nil
}

func (s *System) Describe(id uint32) cgdisplay.Info {
	if d := s.find(id); d != nil {
		return d.Info
	}
	return cgdisplay.Info{ID: id}
}

func (s *System) CurrentMode(id uint32) (cgdisplay.Mode, bool) {
	d := s.find(id)
	if d == nil || d.Mode == nil {
		return cgdisplay.Mode{}, false
	}
	return *d.Mode, true
}

func (s *System) UserBrightness(id uint32) float64 {
	s.BrightnessReads++
	if d := s.find(id); d != nil {
		return d.Brightness
	}
	return -1
}

func (s *System) SetUserBrightness(id uint32, value float64) error {
	s.BrightnessWrites++
	d := s.find(id)
	if d == nil {
		return errors.New("no such display")
	}
	d.Brightness = value
	return nil
}

// FrameworkCalls counts brightness reads and writes.
func (s *System) FrameworkCalls() int {
	return s.BrightnessReads + s.BrightnessWrites
}

func (s *System) RegisterReconfiguration(fn func(id, flags uint32)) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handlers == nil {
		s.handlers = map[int]func(id, flags uint32){}
	}
	s.next++
	token := s.next
	s.handlers[token] = fn
	s.Registered++

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.handlers, token)
			s.Removed++
			s.mu.Unlock()
		})
	}, nil
}

// Queue schedules a callback for the next RunLoopOnce.
func (s *System) Queue(id, flags uint32) {
	s.mu.Lock()
	s.pending = append(s.pending, Event{ID: id, Flags: flags})
	s.mu.Unlock()
}

// Emit invokes every registered handler immediately.
func (s *System) Emit(id, flags uint32) {
	s.mu.Lock()
	fns := make([]func(id, flags uint32), 0, len(s.handlers))
	for _, fn := range s.handlers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(id, flags)
	}
}

// Armed reports how many handlers are currently registered.
func (s *System) Armed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}

func (s *System) RunLoopOnce(d time.Duration) {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, ev := range pending {
		s.Emit(ev.ID, ev.Flags)
	}
	if s.OnRunLoop != nil {
		s.OnRunLoop()
	}
}
