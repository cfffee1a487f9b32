package displayinfo

import (
	"fmt"
	"math"

	"github.com/hoppxi/displayconfig/pkg/cgdisplay"
)

// Brightness is a CoreDisplay user brightness reading.
type Brightness struct {
	Fraction  float64 `json:"fraction" yaml:"fraction"`
	Supported bool    `json:"supported" yaml:"supported"`
}

// NewBrightness classifies a raw reading; anything outside [0, 1] means
// the display has no brightness control.
func NewBrightness(fraction float64) Brightness {
	return Brightness{Fraction: fraction, Supported: fraction >= 0 && fraction <= 1}
}

func (b Brightness) Percent() int {
	return int(math.Round(b.Fraction * 100))
}

func FractionFromPercent(percent int) float64 {
	return float64(percent) / 100.0
}

// ValidatePercent accepts 0..100 inclusive.
func ValidatePercent(percent int) error {
	if percent < 0 || percent > 100 {
		return &BrightnessRangeError{Percent: percent}
	}
	return nil
}

type BrightnessReport struct {
	Index          int `json:"index" yaml:"index"`
	cgdisplay.Info `yaml:",inline"`
	UUID           string     `json:"uuid,omitempty" yaml:"uuid,omitempty"`
	Brightness     Brightness `json:"brightness" yaml:"brightness"`
}

// Brightness reads the brightness of every active display, or of filter
// alone when it is set.
func (s *Service) Brightness(filter *uint32) ([]BrightnessReport, error) {
	ids, err := s.ActiveDisplays(filter)
	if err != nil {
		return nil, err
	}
	panel := s.panelDisplays()

	reports := make([]BrightnessReport, 0, len(ids))
	for i, id := range ids {
		r := BrightnessReport{
			Index:      i + 1,
			Info:       s.Public.Describe(id),
			Brightness: NewBrightness(s.Public.UserBrightness(id)),
		}
		r.UUID = panel.uuidFor(id)
		reports = append(reports, r)
	}
	return reports, nil
}

func (b Brightness) String() string {
	if !b.Supported {
		return "Not available (external display or unsupported)"
	}
	return fmt.Sprintf("%d%%", b.Percent())
}
