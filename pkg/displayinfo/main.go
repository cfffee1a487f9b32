// Package displayinfo reconciles the public CoreGraphics display list with
// MonitorPanel's per-display data and shapes it for presentation.
//
// Nothing is cached: every call re-reads both sources, so the pairing of
// numeric IDs and persistent UUIDs is always current for the session.
package displayinfo

import (
	"errors"
	"fmt"

	"github.com/hoppxi/displayconfig/pkg/cgdisplay"
	"github.com/hoppxi/displayconfig/pkg/monitorpanel"
)

const (
	PlaceholderManager  = "(MonitorPanel manager not available)"
	PlaceholderDisplays = "(no displays array available from manager)"
	PlaceholderModes    = "(no modes available for this display)"
)

type Service struct {
	Public    cgdisplay.System
	Panel     monitorpanel.Provider
	Tolerance Tolerance
}

// Report describes one active display.
type Report struct {
	Index          int `json:"index" yaml:"index"`
	cgdisplay.Info `yaml:",inline"`
	UUID           string          `json:"uuid,omitempty" yaml:"uuid,omitempty"`
	Name           string          `json:"name,omitempty" yaml:"name,omitempty"`
	HiDPI          bool            `json:"hidpi" yaml:"hidpi"`
	Retina         bool            `json:"retina" yaml:"retina"`
	CurrentMode    *cgdisplay.Mode `json:"current_mode,omitempty" yaml:"current_mode,omitempty"`
	Modes          *ModeListing    `json:"modes,omitempty" yaml:"modes,omitempty"`
	// ModesNote explains why Modes is missing in a verbose listing.
	ModesNote string `json:"modes_note,omitempty" yaml:"modes_note,omitempty"`
}

// ActiveDisplays returns the active display IDs, or just filter when it is
// set and active.
func (s *Service) ActiveDisplays(filter *uint32) ([]uint32, error) {
	ids, err := s.Public.ActiveDisplays()
	if err != nil {
		return nil, fmt.Errorf("failed to get displays: %w", err)
	}
	if filter == nil {
		return ids, nil
	}
	if !cgdisplay.Contains(ids, *filter) {
		return nil, &DisplayNotFoundError{ID: *filter}
	}
	return []uint32{*filter}, nil
}

// List builds a report per display. MonitorPanel problems never fail the
// listing; they surface as placeholders.
func (s *Service) List(filter *uint32, verbose bool) ([]Report, error) {
	ids, err := s.ActiveDisplays(filter)
	if err != nil {
		return nil, err
	}
	panel := s.panelDisplays()

	reports := make([]Report, 0, len(ids))
	for i, id := range ids {
		r := Report{Index: i + 1, Info: s.Public.Describe(id)}
		if m, ok := s.Public.CurrentMode(id); ok {
			r.CurrentMode = &m
		}

		pd, found := panel.find(id)
		if found {
			r.UUID, _ = pd.UUID()
			r.Name, _ = pd.Name()
			r.HiDPI = pd.IsHiDPI()
			r.Retina = pd.IsRetina()
		}

		if verbose {
			r.Modes, r.ModesNote = s.modes(id, pd, found, panel.err, r.CurrentMode)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func (s *Service) modes(id uint32, pd monitorpanel.Display, found bool, panelErr error, public *cgdisplay.Mode) (*ModeListing, string) {
	switch {
	case errors.Is(panelErr, monitorpanel.ErrManagerUnavailable):
		return nil, PlaceholderManager
	case panelErr != nil:
		return nil, PlaceholderDisplays
	case !found:
		return nil, fmt.Sprintf("(display ID %d not found in MonitorPanel)", id)
	}

	all, ok := pd.AllModes()
	if !ok {
		return nil, PlaceholderModes
	}
	listing := Categorize(all, SignalFor(pd), public, s.tolerance())
	return &listing, ""
}

// FindByUUID resolves a persistent UUID to its MonitorPanel display.
func (s *Service) FindByUUID(id string) (monitorpanel.Display, error) {
	displays, err := s.Panel.Displays()
	if err != nil {
		return nil, err
	}
	d, ok := monitorpanel.FindByUUID(displays, id)
	if !ok {
		return nil, &PersistentDisplayNotFoundError{UUID: id}
	}
	return d, nil
}

// CurrentModeNumber returns the mode number MonitorPanel reports as
// current for the display with the given persistent UUID.
func (s *Service) CurrentModeNumber(id string) (int32, error) {
	d, err := s.FindByUUID(id)
	if err != nil {
		return 0, err
	}
	m, ok := d.CurrentMode()
	if !ok {
		return 0, &CurrentModeUnavailableError{UUID: id}
	}
	return m.Number, nil
}

// ResolveCurrentMode finds the current MonitorPanel mode for a numeric ID,
// falling back to the geometry match when no authoritative mode is given.
func (s *Service) ResolveCurrentMode(id uint32) (monitorpanel.Mode, bool) {
	d, err := s.Panel.DisplayWithID(id)
	if err != nil {
		return monitorpanel.Mode{}, false
	}
	if m, ok := d.CurrentMode(); ok {
		return m, true
	}

	public, ok := s.Public.CurrentMode(id)
	if !ok {
		return monitorpanel.Mode{}, false
	}
	all, ok := d.AllModes()
	if !ok {
		return monitorpanel.Mode{}, false
	}
	for _, entry := range Categorize(all, CurrentSignal{}, &public, s.tolerance()).Entries() {
		if entry.Current {
			return entry.Mode, true
		}
	}
	return monitorpanel.Mode{}, false
}

// PersistentID returns the UUID paired with a numeric ID in this session.
func (s *Service) PersistentID(id uint32) (string, bool) {
	u := s.panelDisplays().uuidFor(id)
	return u, u != ""
}

func (s *Service) tolerance() Tolerance {
	if s.Tolerance == (Tolerance{}) {
		return DefaultTolerance
	}
	return s.Tolerance
}

type panelSnapshot struct {
	displays []monitorpanel.Display
	err      error
}

func (s *Service) panelDisplays() panelSnapshot {
	displays, err := s.Panel.Displays()
	return panelSnapshot{displays: displays, err: err}
}

func (p panelSnapshot) find(id uint32) (monitorpanel.Display, bool) {
	if p.err != nil {
		return nil, false
	}
	return monitorpanel.FindByID(p.displays, id)
}

func (p panelSnapshot) uuidFor(id uint32) string {
	d, ok := p.find(id)
	if !ok {
		return ""
	}
	u, _ := d.UUID()
	return u
}
