package operation

import (
	"fmt"

	"github.com/hoppxi/displayconfig/pkg/cgdisplay"
	"github.com/hoppxi/displayconfig/pkg/displayinfo"
	"github.com/hoppxi/displayconfig/pkg/monitorpanel"
	log "github.com/sirupsen/logrus"
)

// Display applies mode and brightness changes. Requests are validated
// before anything is sent to the frameworks.
type Display struct {
	Service *displayinfo.Service
}

func NewDisplay(svc *displayinfo.Service) *Display {
	return &Display{Service: svc}
}

type ModeChange struct {
	UUID      string
	DisplayID uint32
	Mode      int32
}

// SetMode switches the display with the given persistent UUID to mode
// number. The number must be one of the display's own modes.
func (d *Display) SetMode(uuid string, number int32) (ModeChange, error) {
	target, err := d.Service.FindByUUID(uuid)
	if err != nil {
		return ModeChange{}, err
	}

	modes, ok := target.AllModes()
	if !ok {
		return ModeChange{}, &displayinfo.ModesUnavailableError{UUID: uuid}
	}
	if !hasMode(modes, number) {
		return ModeChange{}, &displayinfo.ModeNotFoundError{UUID: uuid, Mode: number}
	}

	change := ModeChange{UUID: uuid, DisplayID: target.ID(), Mode: number}
	log.WithFields(log.Fields{"display": change.DisplayID, "mode": number}).Debug("setting display mode")
	if code := target.SetModeNumber(number); code != 0 {
		return change, &displayinfo.SetModeError{Code: code}
	}
	return change, nil
}

func hasMode(modes []monitorpanel.Mode, number int32) bool {
	for _, m := range modes {
		if m.Number == number {
			return true
		}
	}
	return false
}

// BrightnessChange reports a brightness write. Old is the reading taken
// just before the write and may be unsupported.
type BrightnessChange struct {
	Info cgdisplay.Info
	UUID string
	Old  displayinfo.Brightness
	New  int
}

// SetBrightness sets the user brightness of display id to percent (0-100).
func (d *Display) SetBrightness(id uint32, percent int) (BrightnessChange, error) {
	if err := displayinfo.ValidatePercent(percent); err != nil {
		return BrightnessChange{}, err
	}
	if _, err := d.Service.ActiveDisplays(&id); err != nil {
		return BrightnessChange{}, err
	}

	public := d.Service.Public
	change := BrightnessChange{
		Info: public.Describe(id),
		Old:  displayinfo.NewBrightness(public.UserBrightness(id)),
		New:  percent,
	}
	change.UUID, _ = d.Service.PersistentID(id)

	if err := public.SetUserBrightness(id, displayinfo.FractionFromPercent(percent)); err != nil {
		return change, fmt.Errorf("failed to set brightness: %w", err)
	}
	log.WithFields(log.Fields{"display": id, "percent": percent}).Debug("brightness updated")
	return change, nil
}
