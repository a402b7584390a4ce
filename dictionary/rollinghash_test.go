package dictionary

import "testing"

func TestRollingHashRollMatchesFreshInit(t *testing.T) {
	h := NewRollingHash(4)
	if got := h.Init([]byte("abcd")); got != h.Sum() {
		t.Fatalf("Init() = %d, Sum() = %d, want equal", got, h.Sum())
	}

	rolled := h.Roll('a', 'e') // slide window from "abcd" to "bcde"
	want := NewRollingHash(4).Init([]byte("bcde"))
	if rolled != want {
		t.Errorf("Roll() = %d, want %d (hash of a fresh Init over the slid window)", rolled, want)
	}
}

func TestRollingHashDistinguishesDifferentChunks(t *testing.T) {
	h1 := NewRollingHash(3).Init([]byte("abc"))
	h2 := NewRollingHash(3).Init([]byte("abd"))
	if h1 == h2 {
		t.Fatal("expected different chunks to hash differently")
	}
}

func TestRollingHashResetClearsState(t *testing.T) {
	h := NewRollingHash(4)
	h.Init([]byte("abcd"))
	h.Reset()
	if h.Sum() != 0 {
		t.Fatalf("Sum() after Reset() = %d, want 0", h.Sum())
	}
}

func TestRollingHashInitPanicsOnWrongWidth(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Init to panic on a chunk of the wrong width")
		}
	}()
	NewRollingHash(4).Init([]byte("abc"))
}
