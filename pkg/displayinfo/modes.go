package displayinfo

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/hoppxi/displayconfig/pkg/cgdisplay"
	"github.com/hoppxi/displayconfig/pkg/monitorpanel"
)

// Tolerance bounds the heuristic match between a MonitorPanel mode and the
// CoreGraphics current mode.
type Tolerance struct {
	Logical float64 `json:"logical_tolerance" yaml:"logical_tolerance" mapstructure:"logical_tolerance"`
	Refresh float64 `json:"refresh_tolerance" yaml:"refresh_tolerance" mapstructure:"refresh_tolerance"`
	Pixel   float64 `json:"pixel_tolerance" yaml:"pixel_tolerance" mapstructure:"pixel_tolerance"`
}

var DefaultTolerance = Tolerance{Logical: 0.1, Refresh: 1.0, Pixel: 1.0}

// CurrentSignal is the current mode number when MonitorPanel reports one.
type CurrentSignal struct {
	Number int32
	Known  bool
}

func SignalFor(d monitorpanel.Display) CurrentSignal {
	if m, ok := d.CurrentMode(); ok {
		return CurrentSignal{Number: m.Number, Known: true}
	}
	return CurrentSignal{}
}

type ModeEntry struct {
	monitorpanel.Mode `yaml:",inline"`
	Current           bool `json:"current" yaml:"current"`
}

// ModeListing is the user-visible modes of one display, HiDPI/Retina group
// first, each group ordered by mode number.
type ModeListing struct {
	Total    int         `json:"total" yaml:"total"`
	HiDPI    []ModeEntry `json:"hidpi" yaml:"hidpi"`
	Standard []ModeEntry `json:"standard" yaml:"standard"`
}

// Entries returns both groups in presentation order.
func (l ModeListing) Entries() []ModeEntry {
	return append(append([]ModeEntry(nil), l.HiDPI...), l.Standard...)
}

// MatchesPublic reports whether m is the mode CoreGraphics says is active:
// same logical size, same refresh rate, and pixel size equal to the public
// logical size times the mode's own scale. The pixel check separates HiDPI
// variants that share a logical size.
func MatchesPublic(m monitorpanel.Mode, public cgdisplay.Mode, tol Tolerance) bool {
	pw, ph := float64(public.Width), float64(public.Height)
	scale := float64(m.Scale)

	logical := math.Abs(pw-float64(m.Width)) < tol.Logical &&
		math.Abs(ph-float64(m.Height)) < tol.Logical
	refresh := math.Abs(public.RefreshRate-float64(m.RefreshRate)) < tol.Refresh
	pixels := math.Abs(math.Round(pw*scale)-float64(m.PixelWidth)) < tol.Pixel &&
		math.Abs(math.Round(ph*scale)-float64(m.PixelHeight)) < tol.Pixel

	return logical && refresh && pixels
}

func isCurrent(m monitorpanel.Mode, signal CurrentSignal, public *cgdisplay.Mode, tol Tolerance) bool {
	if signal.Known {
		return m.Number == signal.Number
	}
	if public == nil {
		return false
	}
	return MatchesPublic(m, *public, tol)
}

// Categorize filters out hidden modes, marks the current one and groups
// the rest. An authoritative signal always wins over the heuristic.
func Categorize(modes []monitorpanel.Mode, signal CurrentSignal, public *cgdisplay.Mode, tol Tolerance) ModeListing {
	listing := ModeListing{Total: len(modes)}
	for _, m := range modes {
		if !m.UserVisible {
			continue
		}
		entry := ModeEntry{Mode: m, Current: isCurrent(m, signal, public, tol)}
		if m.Scaled() {
			listing.HiDPI = append(listing.HiDPI, entry)
		} else {
			listing.Standard = append(listing.Standard, entry)
		}
	}

	byNumber := func(entries []ModeEntry) func(i, j int) bool {
		return func(i, j int) bool { return entries[i].Number < entries[j].Number }
	}
	sort.SliceStable(listing.HiDPI, byNumber(listing.HiDPI))
	sort.SliceStable(listing.Standard, byNumber(listing.Standard))
	return listing
}

// FormatMode renders one entry the way `list --verbose` prints it.
func FormatMode(e ModeEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mode #%d: %dx%d", e.Number, e.Width, e.Height)
	if e.HasDistinctPixels() {
		fmt.Fprintf(&b, " (%dx%d pixels)", e.PixelWidth, e.PixelHeight)
	}
	fmt.Fprintf(&b, " @ %dHz", e.RefreshRate)
	if e.Scale != 1.0 {
		fmt.Fprintf(&b, " scale=%.1fx", e.Scale)
	}

	var flags []string
	if e.HiDPI {
		flags = append(flags, "HiDPI")
	}
	if e.Retina {
		flags = append(flags, "Retina")
	}
	if e.Native {
		flags = append(flags, "Native")
	}
	if e.Default {
		flags = append(flags, "Default")
	}
	if len(flags) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(flags, ", "))
	}
	if e.Current {
		b.WriteString(" [Current]")
	}
	return b.String()
}
