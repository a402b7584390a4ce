package dictionary

import (
	"github.com/cespare/xxhash/v2"
	"github.com/coregx/acscan/internal/bitset"
)

// BloomFilter is the front-line cheap negative test for a dictionary
// lookup (spec §4.4 step 1: "Bloom-test the hash. Miss -> no entry."). No
// Bloom filter library exists anywhere in the example pack, so this is
// hand-rolled atop internal/bitset and the xxhash digest already used for
// bucket keys — a double-hashing (Kirsch-Mitzenmacher) scheme derives k
// independent lanes from one 64-bit xxhash sum instead of running k
// distinct hash functions.
type BloomFilter struct {
	bits *bitset.Bits
	k    int
}

// NewBloomFilter allocates a filter with m bits and k hash lanes.
func NewBloomFilter(m, k int) *BloomFilter {
	if m <= 0 {
		m = 1
	}
	if k <= 0 {
		k = 1
	}
	return &BloomFilter{bits: bitset.NewBits(m), k: k}
}

// Add inserts key into the filter.
func (f *BloomFilter) Add(key []byte) {
	h1, h2 := f.lanes(key)
	m := uint64(f.bits.Len())
	for i := 0; i < f.k; i++ {
		idx := (h1 + uint64(i)*h2) % m
		f.bits.Set(int(idx))
	}
}

// MayContain reports whether key might be in the filter. false is a
// definite negative; true may be a false positive.
func (f *BloomFilter) MayContain(key []byte) bool {
	h1, h2 := f.lanes(key)
	m := uint64(f.bits.Len())
	for i := 0; i < f.k; i++ {
		idx := (h1 + uint64(i)*h2) % m
		if !f.bits.Test(int(idx)) {
			return false
		}
	}
	return true
}

// lanes splits one xxhash sum into two independent 32-bit halves, combined
// per Kirsch-Mitzenmacher as g_i(x) = h1 + i*h2.
func (f *BloomFilter) lanes(key []byte) (h1, h2 uint64) {
	sum := xxhash.Sum64(key)
	return sum & 0xFFFFFFFF, sum >> 32
}
