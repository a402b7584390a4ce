package cpufeat

import "testing"

func TestHasHardwarePopcountIsStable(t *testing.T) {
	// The result is machine-dependent, but it must not change between calls
	// within a single process and must not panic on any architecture.
	first := HasHardwarePopcount()
	second := HasHardwarePopcount()
	if first != second {
		t.Fatalf("HasHardwarePopcount() returned inconsistent results: %v then %v", first, second)
	}
}
