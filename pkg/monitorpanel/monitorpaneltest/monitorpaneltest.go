// Package monitorpaneltest provides in-memory MonitorPanel displays for
// tests. Mode-setting calls are recorded so tests can assert that invalid
// input never reaches the manager.
package monitorpaneltest

import "github.com/hoppxi/displayconfig/pkg/monitorpanel"

type Display struct {
	DisplayID   uint32
	UUIDString  string
	DisplayName string
	BuiltIn     bool
	HiDPI       bool
	Retina      bool

	Modes        []monitorpanel.Mode
	ModesMissing bool
	// Current is the authoritative current mode; nil means the display
	// does not report one.
	Current *monitorpanel.Mode

	SetResult int32
	SetCalls  []int32
}

var _ monitorpanel.Display = (*Display)(nil)

func (d *Display) ID() uint32 { return d.DisplayID }

func (d *Display) UUID() (string, bool) {
	return d.UUIDString, d.UUIDString != ""
}

func (d *Display) Name() (string, bool) {
	return d.DisplayName, d.DisplayName != ""
}

func (d *Display) IsBuiltIn() bool { return d.BuiltIn }
func (d *Display) IsHiDPI() bool   { return d.HiDPI }
func (d *Display) IsRetina() bool  { return d.Retina }

func (d *Display) AllModes() ([]monitorpanel.Mode, bool) {
	if d.ModesMissing {
		return nil, false
	}
	return append([]monitorpanel.Mode(nil), d.Modes...), true
}

func (d *Display) CurrentMode() (monitorpanel.Mode, bool) {
	if d.Current == nil {
		return monitorpanel.Mode{}, false
	}
	return *d.Current, true
}

// SetModeNumber records the call and, on success, makes the mode current.
func (d *Display) SetModeNumber(number int32) int32 {
	d.SetCalls = append(d.SetCalls, number)
	if d.SetResult != 0 {
		return d.SetResult
	}
	for _, m := range d.Modes {
		if m.Number == number {
			current := m
			d.Current = &current
		}
	}
	return 0
}

// Provider serves a fixed list of displays.
type Provider struct {
	List []*Display
	// Err, when set, is returned from every call.
	Err error
}

var _ monitorpanel.Provider = (*Provider)(nil)

func (p *Provider) Displays() ([]monitorpanel.Display, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	out := make([]monitorpanel.Display, 0, len(p.List))
	for _, d := range p.List {
		out = append(out, d)
	}
	return out, nil
}

func (p *Provider) DisplayWithID(id uint32) (monitorpanel.Display, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	for _, d := range p.List {
		if d.DisplayID == id {
			return d, nil
		}
	}
	return nil, monitorpanel.ErrDisplayNotFound
}

// SetCalls returns the total number of SetModeNumber calls across displays.
func (p *Provider) SetCalls() int {
	n := 0
	for _, d := range p.List {
		n += len(d.SetCalls)
	}
	return n
}
