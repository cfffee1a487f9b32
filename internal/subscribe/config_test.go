package subscribe

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hoppxi/displayconfig/internal/manager"
)

func TestConfigEventsReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "displayconfig.yaml")
	if err := os.WriteFile(path, []byte("match:\n  refresh_tolerance: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	c := &manager.ConfigManager{Path: path}
	if _, err := c.Settings(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := ConfigEvents(ctx, c)

	if err := os.WriteFile(path, []byte("match:\n  refresh_tolerance: 2.5\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case s := <-events:
			if s.Match.Refresh == 2.5 {
				return
			}
		case <-deadline:
			t.Fatal("no reload after config write")
		}
	}
}

func TestConfigEventsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)

	ctx, cancel := context.WithCancel(context.Background())
	events := ConfigEvents(ctx, &manager.ConfigManager{})
	cancel()

	select {
	case _, ok := <-events:
		if ok {
			t.Fatal("unexpected settings without a config file")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
