// Package dictionary implements the rolling-hash and Bloom-filter-fronted
// content-addressed skip layer (C4): recognizing a previously-scanned chunk
// lets the scanner jump the cursor past it and resume from a precomputed
// state instead of re-running the matching engine byte by byte.
package dictionary

// rollingHashBase is the polynomial base used by RollingHash. 257 is prime
// and larger than any byte value, which keeps the hash from collapsing on
// runs of a single repeated byte.
const rollingHashBase uint64 = 257

// RollingHash is a fixed-window Rabin-Karp polynomial rolling hash over a
// dictionary chunk width W (spec §4.4: "supports init(), roll(c_out,
// c_in), and reset()"). There is no off-the-shelf incremental hash in the
// example pack — xxhash.Sum64 is a one-shot digest, not a sliding one — so
// this is hand-rolled.
type RollingHash struct {
	window   int
	basePowW uint64 // rollingHashBase^(window-1), used to peel off the outgoing byte
	hash     uint64
}

// NewRollingHash returns a RollingHash over a window of the given width.
func NewRollingHash(window int) *RollingHash {
	h := &RollingHash{window: window, basePowW: 1}
	for i := 0; i < window-1; i++ {
		h.basePowW *= rollingHashBase
	}
	return h
}

// Window returns the configured chunk width.
func (h *RollingHash) Window() int {
	return h.window
}

// Init computes the hash of the first Window() bytes of chunk, replacing
// any in-progress hash. It panics if len(chunk) != h.Window().
func (h *RollingHash) Init(chunk []byte) uint64 {
	if len(chunk) != h.window {
		panic("dictionary: RollingHash.Init given a chunk of the wrong width")
	}
	var hash uint64
	for _, b := range chunk {
		hash = hash*rollingHashBase + uint64(b)
	}
	h.hash = hash
	return hash
}

// Roll slides the window forward by one byte: cOut leaves the window (it
// was the oldest byte), cIn enters it. Init must be called once before the
// first Roll.
func (h *RollingHash) Roll(cOut, cIn byte) uint64 {
	h.hash = (h.hash-uint64(cOut)*h.basePowW)*rollingHashBase + uint64(cIn)
	return h.hash
}

// Sum returns the current hash value without recomputing it.
func (h *RollingHash) Sum() uint64 {
	return h.hash
}

// Reset clears the in-progress hash, for reuse at the start of the next
// packet (spec §4.5: "reset the rolling hash and the matching state to
// root" per packet).
func (h *RollingHash) Reset() {
	h.hash = 0
}

// Checksum computes the one-shot RollingHash digest of chunk. Dictionary
// uses it at build time (Add) to index its rolling-hash candidate set
// against the same digest a scanner's incremental Init/Roll sequence
// produces over a window of the same width, so a window can be rejected
// before it ever reaches the content hash and Bloom test.
func Checksum(chunk []byte) uint64 {
	return NewRollingHash(len(chunk)).Init(chunk)
}
