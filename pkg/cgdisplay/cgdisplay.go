// Package cgdisplay binds the public display APIs: CoreGraphics for the
// active display list, geometry and reconfiguration callbacks, CoreDisplay
// for user brightness and CoreFoundation for the run loop.
package cgdisplay

import (
	"errors"
	"time"
)

var ErrUnsupported = errors.New("CoreGraphics display services are only available on macOS")

const maxDisplays = 32

// Mode is the CoreGraphics view of a display mode. Width and Height are in
// logical points.
type Mode struct {
	Width       int     `json:"width" yaml:"width"`
	Height      int     `json:"height" yaml:"height"`
	PixelWidth  int     `json:"pixel_width" yaml:"pixel_width"`
	PixelHeight int     `json:"pixel_height" yaml:"pixel_height"`
	RefreshRate float64 `json:"refresh_rate" yaml:"refresh_rate"`
}

type Info struct {
	ID         uint32 `json:"id" yaml:"id"`
	Model      uint32 `json:"model" yaml:"model"`
	Vendor     uint32 `json:"vendor" yaml:"vendor"`
	PixelsWide int    `json:"pixels_wide" yaml:"pixels_wide"`
	PixelsHigh int    `json:"pixels_high" yaml:"pixels_high"`
	IsMain     bool   `json:"is_main" yaml:"is_main"`
	IsBuiltin  bool   `json:"is_builtin" yaml:"is_builtin"`
}

type Source interface {
	ActiveDisplays() ([]uint32, error)
	Describe(id uint32) Info
	CurrentMode(id uint32) (Mode, bool)
}

// Brightness reads and writes the normalized user brightness. A value
// outside [0, 1] from UserBrightness means the display has no brightness
// control.
type Brightness interface {
	UserBrightness(id uint32) float64
	SetUserBrightness(id uint32, value float64) error
}

// Notifier delivers display reconfiguration callbacks. Callbacks only fire
// while RunLoopOnce is pumping the main run loop.
type Notifier interface {
	RegisterReconfiguration(fn func(id, flags uint32)) (unregister func(), err error)
	RunLoopOnce(d time.Duration)
}

type System interface {
	Source
	Brightness
	Notifier
}

// Contains reports whether id is in the active display list.
func Contains(ids []uint32, id uint32) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
