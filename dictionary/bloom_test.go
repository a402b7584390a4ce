package dictionary

import "testing"

func TestBloomFilterNoFalseNegatives(t *testing.T) {
	f := NewBloomFilter(1024, 4)
	keys := [][]byte{[]byte("abcd"), []byte("wxyz"), []byte("1234")}
	for _, k := range keys {
		f.Add(k)
	}
	for _, k := range keys {
		if !f.MayContain(k) {
			t.Errorf("MayContain(%q) = false, want true after Add", k)
		}
	}
}

func TestBloomFilterRejectsObviouslyAbsentKeys(t *testing.T) {
	f := NewBloomFilter(4096, 4)
	f.Add([]byte("abcd"))
	if f.MayContain([]byte("completely-different-and-long-enough-to-differ")) {
		t.Error("MayContain on a key that was never added unexpectedly returned true in a lightly-loaded filter")
	}
}
