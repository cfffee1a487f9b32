package cgdisplay

import "testing"

func TestContains(t *testing.T) {
	ids := []uint32{1, 69734208, 724062916}
	if !Contains(ids, 69734208) {
		t.Error("expected active display to be found")
	}
	if Contains(ids, 2) {
		t.Error("unexpected match for inactive display")
	}
	if Contains(nil, 1) {
		t.Error("empty list matched")
	}
}
