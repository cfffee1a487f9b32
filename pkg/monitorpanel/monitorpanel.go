// Package monitorpanel exposes the display manager of the private
// MonitorPanel framework through typed interfaces.
//
// The framework is undocumented and may disappear in any macOS release, so
// Open never fails: when the manager cannot be constructed it returns the
// Unavailable provider, whose calls all report ErrManagerUnavailable.
package monitorpanel

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrManagerUnavailable  = errors.New("MonitorPanel manager not available")
	ErrDisplaysUnavailable = errors.New("could not get displays from MonitorPanel")
	ErrDisplayNotFound     = errors.New("display not found in MonitorPanel")
)

// ResultUnsupported is returned by SetModeNumber when the display object
// does not implement mode setting at all.
const ResultUnsupported int32 = -1

// Mode is a snapshot of one MPDisplayMode. Number is assigned by the
// framework and is the only valid selector for SetModeNumber.
type Mode struct {
	Number      int32   `json:"mode_number" yaml:"mode_number"`
	Width       int32   `json:"width" yaml:"width"`
	Height      int32   `json:"height" yaml:"height"`
	PixelWidth  int32   `json:"pixel_width" yaml:"pixel_width"`
	PixelHeight int32   `json:"pixel_height" yaml:"pixel_height"`
	RefreshRate int32   `json:"refresh_rate" yaml:"refresh_rate"`
	Scale       float32 `json:"scale" yaml:"scale"`
	HiDPI       bool    `json:"hidpi" yaml:"hidpi"`
	Retina      bool    `json:"retina" yaml:"retina"`
	Native      bool    `json:"native" yaml:"native"`
	Default     bool    `json:"default" yaml:"default"`
	UserVisible bool    `json:"user_visible" yaml:"user_visible"`
}

// Scaled reports whether the mode belongs to the HiDPI/Retina group.
func (m Mode) Scaled() bool {
	return m.HiDPI || m.Retina
}

func (m Mode) HasDistinctPixels() bool {
	return m.PixelWidth != m.Width || m.PixelHeight != m.Height
}

// Display is one MPDisplay.
type Display interface {
	ID() uint32
	UUID() (string, bool)
	Name() (string, bool)
	IsBuiltIn() bool
	IsHiDPI() bool
	IsRetina() bool
	AllModes() ([]Mode, bool)
	CurrentMode() (Mode, bool)
	// SetModeNumber asks the manager to switch modes. Zero means success.
	SetModeNumber(number int32) int32
}

// Provider is the display manager capability. Implementations: the native
// MPDisplayMgr bridge and Unavailable.
type Provider interface {
	Displays() ([]Display, error)
	DisplayWithID(id uint32) (Display, error)
}

// Unavailable is the provider used when MonitorPanel cannot be reached.
type Unavailable struct{}

var _ Provider = Unavailable{}

func (Unavailable) Displays() ([]Display, error) {
	return nil, ErrManagerUnavailable
}

func (Unavailable) DisplayWithID(id uint32) (Display, error) {
	return nil, ErrManagerUnavailable
}

// IsAvailable reports whether p is backed by a live manager.
func IsAvailable(p Provider) bool {
	_, unavailable := p.(Unavailable)
	return p != nil && !unavailable
}

// firstAvailable returns the provider of the first constructor that
// succeeds, or Unavailable when none does.
func firstAvailable(ctors ...func() (Provider, bool)) Provider {
	for _, ctor := range ctors {
		if p, ok := ctor(); ok {
			return p
		}
	}
	return Unavailable{}
}

// FindByID scans displays for a numeric ID; the first match wins.
func FindByID(displays []Display, id uint32) (Display, bool) {
	for _, d := range displays {
		if d.ID() == id {
			return d, true
		}
	}
	return nil, false
}

// FindByUUID returns the display whose persistent UUID matches want,
// ignoring letter case.
func FindByUUID(displays []Display, want string) (Display, bool) {
	for _, d := range displays {
		id, ok := d.UUID()
		if ok && SameUUID(id, want) {
			return d, true
		}
	}
	return nil, false
}

// SameUUID compares two persistent display IDs. Canonical UUIDs are
// compared by value, anything else case-insensitively.
func SameUUID(a, b string) bool {
	ua, errA := uuid.Parse(strings.TrimSpace(a))
	ub, errB := uuid.Parse(strings.TrimSpace(b))
	if errA == nil && errB == nil {
		return ua == ub
	}
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
