//go:build darwin

package monitorpanel

import (
	"github.com/hoppxi/displayconfig/pkg/objcrt"
	"github.com/sirupsen/logrus"
)

const frameworkPath = "/System/Library/PrivateFrameworks/MonitorPanel.framework/MonitorPanel"

// Open loads MonitorPanel and builds a manager, trying alloc/init first and
// the shared manager second.
func Open() Provider {
	if err := objcrt.LoadFramework(frameworkPath); err != nil {
		logrus.WithError(err).Debugln("monitorpanel: framework not loaded")
		return Unavailable{}
	}
	cls, ok := objcrt.GetClass("MPDisplayMgr")
	if !ok {
		logrus.Debugln("monitorpanel: MPDisplayMgr class not found")
		return Unavailable{}
	}

	return firstAvailable(
		func() (Provider, bool) {
			obj, ok := objcrt.NewInstance(cls)
			if !ok {
				logrus.Debugln("monitorpanel: alloc/init returned nil, trying sharedMgr")
			}
			return &nativeManager{obj: obj}, ok
		},
		func() (Provider, bool) {
			obj, ok := objcrt.SharedInstance(cls, "sharedMgr")
			if !ok {
				logrus.Debugln("monitorpanel: sharedMgr returned nil")
			}
			return &nativeManager{obj: obj}, ok
		},
	)
}

type nativeManager struct {
	obj objcrt.Object
}

func (m *nativeManager) Displays() ([]Display, error) {
	items, ok := m.obj.Array("displays")
	if !ok {
		return nil, ErrDisplaysUnavailable
	}
	displays := make([]Display, 0, len(items))
	for _, item := range items {
		displays = append(displays, nativeDisplay{obj: item})
	}
	return displays, nil
}

func (m *nativeManager) DisplayWithID(id uint32) (Display, error) {
	obj := m.obj.Send("displayWithID:", int32(id))
	if obj.IsNil() {
		return nil, ErrDisplayNotFound
	}
	return nativeDisplay{obj: obj}, nil
}

type nativeDisplay struct {
	obj objcrt.Object
}

func (d nativeDisplay) ID() uint32 {
	id, _ := d.obj.Int32("displayID")
	return uint32(id)
}

func (d nativeDisplay) UUID() (string, bool) {
	return d.obj.Send("uuid").StringValue("UUIDString")
}

func (d nativeDisplay) Name() (string, bool) {
	return d.obj.StringValue("displayName")
}

func (d nativeDisplay) IsBuiltIn() bool { return d.obj.Bool("isBuiltInDisplay") }
func (d nativeDisplay) IsHiDPI() bool   { return d.obj.Bool("isHiDPI") }
func (d nativeDisplay) IsRetina() bool  { return d.obj.Bool("isRetina") }

func (d nativeDisplay) AllModes() ([]Mode, bool) {
	items, ok := d.obj.Array("allModes")
	if !ok {
		return nil, false
	}
	modes := make([]Mode, 0, len(items))
	for _, item := range items {
		modes = append(modes, readMode(item))
	}
	return modes, true
}

func (d nativeDisplay) CurrentMode() (Mode, bool) {
	obj := d.obj.Send("currentMode")
	if obj.IsNil() {
		return Mode{}, false
	}
	return readMode(obj), true
}

func (d nativeDisplay) SetModeNumber(number int32) int32 {
	code, ok := d.obj.Int32("setModeNumber:", number)
	if !ok {
		return ResultUnsupported
	}
	return code
}

func readMode(o objcrt.Object) Mode {
	var m Mode
	m.Number, _ = o.Int32("modeNumber")
	m.Width, _ = o.Int32("width")
	m.Height, _ = o.Int32("height")
	m.PixelWidth, _ = o.Int32("pixelsWide")
	m.PixelHeight, _ = o.Int32("pixelsHigh")
	m.RefreshRate, _ = o.Int32("refreshRate")
	m.Scale, _ = o.Float32("scale")
	m.HiDPI = o.Bool("isHiDPI")
	m.Retina = o.Bool("isRetina")
	m.Native = o.Bool("isNativeMode")
	m.Default = o.Bool("isDefaultMode")
	m.UserVisible = o.Bool("isUserVisible")
	return m
}
