//go:build !darwin

package objcrt

import (
	"errors"
	"testing"
)

func TestUnsupportedPlatformReportsUnavailable(t *testing.T) {
	if err := LoadFramework("/System/Library/PrivateFrameworks/MonitorPanel.framework/MonitorPanel"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("LoadFramework error = %v, want ErrUnsupported", err)
	}
	if _, ok := GetClass("MPDisplayMgr"); ok {
		t.Fatal("GetClass should report unavailable")
	}
	if _, ok := NewInstance(Nil); ok {
		t.Fatal("NewInstance should fail on a nil class")
	}
	if got := Object(1).Send("displays"); !got.IsNil() {
		t.Fatalf("Send = %v, want Nil", got)
	}
	if _, ok := Object(1).Array("allModes"); ok {
		t.Fatal("Array should report unavailable")
	}

	ran := false
	WithAutoreleasePool(func() { ran = true })
	if !ran {
		t.Fatal("WithAutoreleasePool did not run fn")
	}
}
