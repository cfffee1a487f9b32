package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hoppxi/displayconfig/pkg/cgdisplay"
	"github.com/hoppxi/displayconfig/pkg/cgdisplay/cgdisplaytest"
	"github.com/hoppxi/displayconfig/pkg/monitorpanel"
	"github.com/hoppxi/displayconfig/pkg/monitorpanel/monitorpaneltest"
)

const builtinUUID = "37D8832A-2D66-02CA-B9F7-8F30A301B230"

func fakes(t *testing.T) (*cgdisplaytest.System, *monitorpaneltest.Provider) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)

	sys := &cgdisplaytest.System{Displays: []*cgdisplaytest.Display{
		{
			Info:       cgdisplay.Info{ID: 1, Model: 41002, PixelsWide: 1440, PixelsHigh: 900, IsMain: true, IsBuiltin: true},
			Mode:       &cgdisplay.Mode{Width: 1440, Height: 900, PixelWidth: 2880, PixelHeight: 1800, RefreshRate: 60},
			Brightness: 0.5,
		},
		{
			Info:       cgdisplay.Info{ID: 5, Model: 9999, PixelsWide: 1920, PixelsHigh: 1080},
			Mode:       &cgdisplay.Mode{Width: 1920, Height: 1080, PixelWidth: 1920, PixelHeight: 1080, RefreshRate: 60},
			Brightness: -1,
		},
	}}
	panel := &monitorpaneltest.Provider{List: []*monitorpaneltest.Display{{
		DisplayID:   1,
		UUIDString:  builtinUUID,
		DisplayName: "Color LCD",
		BuiltIn:     true,
		HiDPI:       true,
		Modes: []monitorpanel.Mode{
			{Number: 12, Width: 1440, Height: 900, PixelWidth: 2560, PixelHeight: 1600, RefreshRate: 60, Scale: 2, HiDPI: true, UserVisible: true},
			{Number: 7, Width: 1440, Height: 900, PixelWidth: 2880, PixelHeight: 1800, RefreshRate: 60, Scale: 2, HiDPI: true, UserVisible: true},
			{Number: 3, Width: 1280, Height: 800, PixelWidth: 1280, PixelHeight: 800, RefreshRate: 60, Scale: 1, UserVisible: true},
		},
	}}}

	prevSystem, prevPanel := openSystem, openPanel
	openSystem = func() (cgdisplay.System, error) { return sys, nil }
	openPanel = func() monitorpanel.Provider { return panel }
	t.Cleanup(func() { openSystem, openPanel = prevSystem, prevPanel })
	return sys, panel
}

func execute(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestList(t *testing.T) {
	fakes(t)
	code, out, errOut := execute("list")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	for _, want := range []string{
		"Found 2 active display(s):",
		"  Persistent screen id: " + builtinUUID,
		"  Refresh rate: 60.00 Hz",
		"  Use --verbose to see all available display modes",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestListVerbose(t *testing.T) {
	fakes(t)
	code, out, errOut := execute("list", "-v", "-d", "1")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	want := "    HiDPI/Retina Modes:\n" +
		"      Mode #7: 1440x900 (2880x1800 pixels) @ 60Hz scale=2.0x [HiDPI] [Current]\n" +
		"      Mode #12: 1440x900 (2560x1600 pixels) @ 60Hz scale=2.0x [HiDPI]\n" +
		"\n" +
		"    Standard Modes:\n" +
		"      Mode #3: 1280x800 @ 60Hz\n"
	if !strings.Contains(out, want) {
		t.Fatalf("output:\n%s\nwant block:\n%s", out, want)
	}
	if strings.Contains(out, "Display 2:") {
		t.Fatal("filter ignored")
	}
}

func TestListVerboseManagerUnavailable(t *testing.T) {
	fakes(t)
	openPanel = func() monitorpanel.Provider { return monitorpanel.Unavailable{} }

	code, out, _ := execute("list", "--verbose")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(out, "    (MonitorPanel manager not available)\n") {
		t.Fatalf("output:\n%s", out)
	}
}

func TestListUnknownDisplay(t *testing.T) {
	fakes(t)
	code, out, errOut := execute("list", "-d", "99")
	if code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	if out != "" {
		t.Fatalf("stdout = %q, want nothing", out)
	}
	if !strings.HasPrefix(errOut, "Error: display ID 99 not found") {
		t.Fatalf("stderr = %q", errOut)
	}
}

func TestListJSON(t *testing.T) {
	fakes(t)
	code, out, errOut := execute("list", "-o", "json", "-v")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	var got []map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if len(got) != 2 || got[0]["id"] != float64(1) || got[0]["uuid"] != builtinUUID {
		t.Fatalf("got %v", got)
	}
	if got[1]["modes_note"] != "(display ID 5 not found in MonitorPanel)" {
		t.Fatalf("modes_note = %v", got[1]["modes_note"])
	}
}

func TestListBadOutput(t *testing.T) {
	fakes(t)
	if code, _, _ := execute("list", "-o", "xml"); code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
}

func TestGetMode(t *testing.T) {
	_, panel := fakes(t)
	current := panel.List[0].Modes[1]
	panel.List[0].Current = &current

	code, out, errOut := execute("get-mode", "-d", strings.ToLower(builtinUUID))
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "7\n" {
		t.Fatalf("stdout = %q, want %q", out, "7\n")
	}
}

func TestGetModeUnknownUUID(t *testing.T) {
	fakes(t)
	code, _, errOut := execute("get-mode", "-d", "00000000-0000-0000-0000-000000000000")
	if code != 1 {
		t.Fatalf("exit %d", code)
	}
	want := "Error: display with UUID 00000000-0000-0000-0000-000000000000 not found\nUse 'list' to see available displays and their UUIDs\n"
	if errOut != want {
		t.Fatalf("stderr = %q, want %q", errOut, want)
	}
}

func TestGetModeRequiresDisplay(t *testing.T) {
	fakes(t)
	if code, _, _ := execute("get-mode"); code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
}

func TestSetMode(t *testing.T) {
	_, panel := fakes(t)
	code, out, errOut := execute("set-mode", "-d", builtinUUID, "-m", "3")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "Setting display "+builtinUUID+" (ID: 1) to mode #3...") {
		t.Fatalf("stdout = %q", out)
	}
	if got := panel.List[0].SetCalls; len(got) != 1 || got[0] != 3 {
		t.Fatalf("SetCalls = %v", got)
	}
}

func TestSetModeUnknownMode(t *testing.T) {
	_, panel := fakes(t)
	code, _, errOut := execute("set-mode", "-d", builtinUUID, "-m", "42")
	if code != 1 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(errOut, "Use 'list --verbose' to see available modes for this display") {
		t.Fatalf("stderr = %q", errOut)
	}
	if panel.SetCalls() != 0 {
		t.Fatal("SetModeNumber called for unknown mode")
	}
}

func TestSetModeFailure(t *testing.T) {
	_, panel := fakes(t)
	panel.List[0].SetResult = 1
	code, _, errOut := execute("set-mode", "-d", builtinUUID, "-m", "3")
	if code != 1 || !strings.Contains(errOut, "error code: 1") {
		t.Fatalf("exit %d stderr %q", code, errOut)
	}
}

func TestGetBrightness(t *testing.T) {
	fakes(t)
	code, out, errOut := execute("get-brightness")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "  Brightness: 50%\n") {
		t.Errorf("missing builtin brightness:\n%s", out)
	}
	if !strings.Contains(out, "  Brightness: Not available (external display or unsupported)\n") {
		t.Errorf("missing unsupported line:\n%s", out)
	}
}

func TestSetBrightness(t *testing.T) {
	sys, _ := fakes(t)
	code, out, errOut := execute("set-brightness", "-d", "1", "-b", "42")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	for _, want := range []string{"Current brightness: 50%", "New brightness: 42%", "Brightness updated successfully!"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if sys.Displays[0].Brightness != 0.42 {
		t.Fatalf("stored brightness = %v", sys.Displays[0].Brightness)
	}
}

func TestSetBrightnessOutOfRange(t *testing.T) {
	for _, percent := range []string{"150", "101"} {
		t.Run(percent, func(t *testing.T) {
			sys, _ := fakes(t)
			opens := 0
			openSystem = func() (cgdisplay.System, error) { opens++; return sys, nil }
			openPanel = func() monitorpanel.Provider { opens++; return monitorpanel.Unavailable{} }

			code, _, errOut := execute("set-brightness", "-d", "1", "-b", percent)
			if code != 1 {
				t.Fatalf("exit %d", code)
			}
			if !strings.HasPrefix(errOut, "Error: brightness must be between 0 and 100") {
				t.Fatalf("stderr = %q", errOut)
			}
			if opens != 0 {
				t.Fatalf("frameworks opened %d times for invalid input", opens)
			}
			if sys.FrameworkCalls() != 0 {
				t.Fatal("brightness touched for invalid input")
			}
		})
	}
}

func TestConfigInitAndShow(t *testing.T) {
	fakes(t)
	path := filepath.Join(t.TempDir(), "displayconfig.yaml")

	if code, _, errOut := execute("config", "init", "--config", path); code != 0 {
		t.Fatalf("init: exit %d: %s", code, errOut)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
	if code, _, _ := execute("config", "init", "--config", path); code != 1 {
		t.Fatal("init overwrote without --force")
	}

	code, out, errOut := execute("config", "show", "--config", path)
	if code != 0 {
		t.Fatalf("show: exit %d: %s", code, errOut)
	}
	if !strings.HasPrefix(out, "# "+path+"\n") || !strings.Contains(out, "refresh_tolerance: 1") {
		t.Fatalf("show output:\n%s", out)
	}
}

func TestConfigShowMasksPassword(t *testing.T) {
	fakes(t)
	path := filepath.Join(t.TempDir(), "displayconfig.yaml")
	cfg := "mqtt:\n  broker: tcp://localhost:1883\n  username: display\n  password: s3cret\n"
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}
	code, out, errOut := execute("config", "show", "--config", path)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if strings.Contains(out, "s3cret") {
		t.Fatalf("password printed:\n%s", out)
	}
	if !strings.Contains(out, "***") || !strings.Contains(out, "username: display") {
		t.Fatalf("show output:\n%s", out)
	}
}

func TestConfigOutputDefault(t *testing.T) {
	fakes(t)
	path := filepath.Join(t.TempDir(), "displayconfig.yaml")
	if err := os.WriteFile(path, []byte("output: yaml\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	code, out, errOut := execute("get-brightness", "-d", "1", "--config", path)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "supported: true") {
		t.Fatalf("expected yaml output:\n%s", out)
	}
}
