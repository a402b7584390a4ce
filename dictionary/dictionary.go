package dictionary

import (
	"bytes"

	"github.com/cespare/xxhash/v2"
	"github.com/coregx/acscan/automaton"
	"github.com/coregx/acscan/matcher"
)

// Entry is one recognized chunk (spec §3 "Dictionary entry"): the chunk
// bytes for memcmp verification (hash collisions are possible), the state
// the machine must be in for this entry to apply, the state scanning jumps
// to after skipping the chunk, and any pattern matches that fire strictly
// inside it.
type Entry struct {
	Chunk      []byte
	EntryState automaton.StateID
	ExitState  automaton.StateID
	Inner      []matcher.Hit // offsets relative to the start of Chunk
}

// Dictionary is a Bloom-filter-fronted, separately-chained hash table
// keyed by xxhash.Sum64 over the chunk bytes (spec §4.4). A caller
// maintains a RollingHash incrementally over the input and gates on
// MayContainRollingHash first — that is the cheap per-byte "is this
// position worth checking at all" signal; only a window that clears it
// reaches MayContain/Lookup, which key and verify off the content hash of
// the candidate window, exactly as described in spec §3: "Stores ... the
// starting state ... and the ending state ..., plus any matches that fire
// strictly inside the chunk."
type Dictionary struct {
	width   int
	buckets map[uint64][]*Entry
	bloom   *BloomFilter

	// rollingCandidates holds the RollingHash Checksum of every registered
	// entry's chunk, letting MayContainRollingHash reject a scan window
	// before it costs a content hash or Bloom test (spec §4.4, SPEC_FULL
	// §5: the rolling hash is "a cheap candidate signal used only to decide
	// when to even attempt a chunk lookup").
	rollingCandidates map[uint64]struct{}
}

// NewDictionary allocates an empty dictionary for chunks of the given
// width, fronted by a Bloom filter of bloomBits bits and bloomHashes lanes.
func NewDictionary(width, bloomBits, bloomHashes int) *Dictionary {
	return &Dictionary{
		width:             width,
		buckets:           make(map[uint64][]*Entry),
		bloom:             NewBloomFilter(bloomBits, bloomHashes),
		rollingCandidates: make(map[uint64]struct{}),
	}
}

// Width returns the configured chunk width.
func (d *Dictionary) Width() int {
	return d.width
}

// Len returns the number of entries in the dictionary.
func (d *Dictionary) Len() int {
	n := 0
	for _, bucket := range d.buckets {
		n += len(bucket)
	}
	return n
}

// Add inserts e into the dictionary, keyed by the content hash of e.Chunk.
func (d *Dictionary) Add(e *Entry) {
	key := xxhash.Sum64(e.Chunk)
	d.bloom.Add(e.Chunk)
	d.buckets[key] = append(d.buckets[key], e)
	d.rollingCandidates[Checksum(e.Chunk)] = struct{}{}
}

// MayContainRollingHash reports whether h — a RollingHash digest over a
// window of this dictionary's width — matches the digest of some
// registered chunk. A scanner calls this first, before MayContain's
// content hash and Bloom test, so an ordinary window that can't possibly
// be in the dictionary never pays for xxhash at all. A false here is a
// definite negative; a true still has to clear MayContain and Lookup's
// byte-exact check before it counts as a real hit.
func (d *Dictionary) MayContainRollingHash(h uint64) bool {
	_, ok := d.rollingCandidates[h]
	return ok
}

// MayContain reports the Bloom filter's verdict alone, without the bucket
// probe Lookup also performs. Package scanner uses it to separate a Bloom
// true/false-positive count from the final hit/miss decision (spec §9,
// mirroring DumpReader.c's COUNT_MEMCMP_FAILURES bucket).
func (d *Dictionary) MayContain(chunk []byte) bool {
	return d.bloom.MayContain(chunk)
}

// Lookup implements the three-step dictionary lookup of spec §4.4: a
// Bloom-test, a bucket probe with byte-exact verification, and an
// entry-state check against the scanner's current state. chunk must be
// exactly Width() bytes. A miss of any kind returns ok=false, which is
// always safe to fall through from (spec §8 property 5, "dictionary
// transparency").
func (d *Dictionary) Lookup(chunk []byte, current automaton.StateID) (*Entry, bool) {
	if len(chunk) != d.width {
		return nil, false
	}
	if !d.bloom.MayContain(chunk) {
		return nil, false
	}
	key := xxhash.Sum64(chunk)
	for _, e := range d.buckets[key] {
		if e.EntryState == current && bytes.Equal(e.Chunk, chunk) {
			return e, true
		}
	}
	return nil, false
}
