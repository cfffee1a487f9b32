package operation

import (
	"errors"
	"math"
	"testing"

	"github.com/hoppxi/displayconfig/pkg/cgdisplay"
	"github.com/hoppxi/displayconfig/pkg/cgdisplay/cgdisplaytest"
	"github.com/hoppxi/displayconfig/pkg/displayinfo"
	"github.com/hoppxi/displayconfig/pkg/monitorpanel"
	"github.com/hoppxi/displayconfig/pkg/monitorpanel/monitorpaneltest"
)

const uuid = "A1B2C3D4-0000-1111-2222-333344445555"

func fixture() (*Display, *cgdisplaytest.System, *monitorpaneltest.Provider) {
	sys := &cgdisplaytest.System{Displays: []*cgdisplaytest.Display{
		{Info: cgdisplay.Info{ID: 1, IsBuiltin: true}, Brightness: 0.5},
		{Info: cgdisplay.Info{ID: 2}, Brightness: -1},
	}}
	panel := &monitorpaneltest.Provider{List: []*monitorpaneltest.Display{{
		DisplayID:  1,
		UUIDString: uuid,
		Modes: []monitorpanel.Mode{
			{Number: 3, Width: 1280, Height: 800, UserVisible: true},
			{Number: 7, Width: 1440, Height: 900, UserVisible: true},
		},
	}}}
	return NewDisplay(&displayinfo.Service{Public: sys, Panel: panel}), sys, panel
}

func TestSetMode(t *testing.T) {
	d, _, panel := fixture()

	for i, m := range panel.List[0].Modes {
		change, err := d.SetMode("a1b2c3d4-0000-1111-2222-333344445555", m.Number)
		if err != nil {
			t.Fatalf("mode %d: %v", m.Number, err)
		}
		if change.DisplayID != 1 || change.Mode != m.Number {
			t.Fatalf("mode %d: change = %+v", m.Number, change)
		}
		got := panel.List[0].SetCalls
		if len(got) != i+1 || got[i] != m.Number {
			t.Fatalf("SetCalls = %v, want %d last", got, m.Number)
		}
		current, err := d.Service.CurrentModeNumber(uuid)
		if err != nil || current != m.Number {
			t.Fatalf("current mode = %d, %v; want %d", current, err, m.Number)
		}
	}
}

func TestSetModeRejectsBeforeCall(t *testing.T) {
	tests := []struct {
		name   string
		uuid   string
		mode   int32
		setup  func(*monitorpaneltest.Provider)
		target any
	}{
		{"unknown mode", uuid, 99, nil, new(*displayinfo.ModeNotFoundError)},
		{"unknown display", "ffffffff-0000-0000-0000-000000000000", 7, nil, new(*displayinfo.PersistentDisplayNotFoundError)},
		{"modes missing", uuid, 7, func(p *monitorpaneltest.Provider) { p.List[0].ModesMissing = true }, new(*displayinfo.ModesUnavailableError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _, panel := fixture()
			if tt.setup != nil {
				tt.setup(panel)
			}
			_, err := d.SetMode(tt.uuid, tt.mode)
			if !errors.As(err, tt.target) {
				t.Fatalf("err = %v, want %T", err, tt.target)
			}
			if n := panel.SetCalls(); n != 0 {
				t.Fatalf("SetModeNumber called %d times", n)
			}
		})
	}
}

func TestSetModeManagerUnavailable(t *testing.T) {
	d, _, _ := fixture()
	d.Service.Panel = monitorpanel.Unavailable{}
	if _, err := d.SetMode(uuid, 7); !errors.Is(err, monitorpanel.ErrManagerUnavailable) {
		t.Fatalf("err = %v", err)
	}
}

func TestSetModeFailureCode(t *testing.T) {
	d, _, panel := fixture()
	panel.List[0].SetResult = -6703
	_, err := d.SetMode(uuid, 3)
	var setErr *displayinfo.SetModeError
	if !errors.As(err, &setErr) || setErr.Code != -6703 {
		t.Fatalf("err = %v", err)
	}
}

func TestSetBrightnessRoundTrip(t *testing.T) {
	d, sys, _ := fixture()

	old := 50
	for p := 0; p <= 100; p++ {
		change, err := d.SetBrightness(1, p)
		if err != nil {
			t.Fatalf("%d: %v", p, err)
		}
		if change.Old.Percent() != old || change.New != p || change.UUID != uuid {
			t.Fatalf("%d: change = %+v", p, change)
		}

		reports, err := d.Service.Brightness(&change.Info.ID)
		if err != nil {
			t.Fatal(err)
		}
		got := reports[0].Brightness
		if !got.Supported || math.Abs(got.Fraction-float64(p)/100) > 1e-9 || got.Percent() != p {
			t.Fatalf("%d: read back %+v", p, got)
		}
		old = p
	}
	if sys.BrightnessWrites != 101 {
		t.Fatalf("writes = %d, want 101", sys.BrightnessWrites)
	}
}

func TestSetBrightnessRejectsBeforeCall(t *testing.T) {
	tests := []struct {
		name    string
		id      uint32
		percent int
		target  any
	}{
		{"above range", 1, 150, new(*displayinfo.BrightnessRangeError)},
		{"below range", 1, -1, new(*displayinfo.BrightnessRangeError)},
		{"inactive display", 9, 50, new(*displayinfo.DisplayNotFoundError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, sys, _ := fixture()
			_, err := d.SetBrightness(tt.id, tt.percent)
			if !errors.As(err, tt.target) {
				t.Fatalf("err = %v, want %T", err, tt.target)
			}
			if n := sys.FrameworkCalls(); n != 0 {
				t.Fatalf("%d brightness calls on invalid input", n)
			}
		})
	}
}

func TestSetBrightnessRangeCheckedFirst(t *testing.T) {
	d, sys, _ := fixture()
	if _, err := d.SetBrightness(1, 101); err == nil {
		t.Fatal("expected error")
	}
	if sys.ListCalls != 0 {
		t.Fatalf("display list queried %d times before range check", sys.ListCalls)
	}
}
