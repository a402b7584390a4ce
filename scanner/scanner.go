// Package scanner implements the per-worker matching loop (C5): one
// Scanner drains one pipeline.Queue, running every packet's payload
// through the shared automaton.Machine via package matcher, optionally
// consulting a dictionary.Dictionary to skip previously-seen chunks.
package scanner

import (
	"context"
	"sync"

	"github.com/coregx/acscan/automaton"
	"github.com/coregx/acscan/dictionary"
	"github.com/coregx/acscan/matcher"
	"github.com/coregx/acscan/pipeline"
)

// Stats accumulates one scanner's counters across every packet it has
// processed, mirroring the per-thread ScannerData fields in DumpReader.c
// that get summed across scanners once every worker has joined.
type Stats struct {
	Packets uint64
	Bytes   uint64
	Matches uint64

	// BytesSkipped is the sum of dictionary.Width() for every successful
	// skip (COUNT_DICTIONARY_SKIPPED_BYTES).
	BytesSkipped uint64

	// RollingHashChecks counts every window the rolling hash was evaluated
	// over; BloomChecks counts only the subset that cleared the rolling
	// hash's candidate-set gate and so actually reached the dictionary's
	// content hash and Bloom test. The gap between the two is the per-byte
	// cost the rolling hash saved.
	RollingHashChecks uint64

	// BloomChecks, BloomPositives and DictHits let a caller derive the
	// Bloom filter's false-positive rate in production
	// (COUNT_MEMCMP_FAILURES: a BloomPositive that was not a DictHit paid
	// for a bucket probe and byte comparison that didn't pan out).
	BloomChecks    uint64
	BloomPositives uint64
	DictHits       uint64

	// Transitions is the goto/failure breakdown from the matching engine
	// itself (COUNT_FAIL_PERCENT), accumulated across every packet.
	Transitions matcher.Stats
}

// add folds o's counters into s, used by Sum when a caller sums several
// scanners' Stats.
func (s *Stats) add(o Stats) {
	s.Packets += o.Packets
	s.Bytes += o.Bytes
	s.Matches += o.Matches
	s.BytesSkipped += o.BytesSkipped
	s.RollingHashChecks += o.RollingHashChecks
	s.BloomChecks += o.BloomChecks
	s.BloomPositives += o.BloomPositives
	s.DictHits += o.DictHits
	s.Transitions.Gotos += o.Transitions.Gotos
	s.Transitions.Failures += o.Transitions.Failures
}

// Sum returns the element-wise sum of every Stats in ss, for the CLI's
// aggregate diagnostic line across all scanners.
func Sum(ss []Stats) Stats {
	var total Stats
	for _, s := range ss {
		total.add(s)
	}
	return total
}

// Scanner is one worker: it owns no mutable state the matching engine
// needs protection for, since each Scanner has its own Queue and its own
// RollingHash/Stats (spec §5 "Shared-resource policy": the Machine and
// Dictionary are the only state shared across scanners, and both are
// read-only once built).
type Scanner struct {
	id      int
	machine *automaton.Machine
	queue   *pipeline.Queue
	dict    *dictionary.Dictionary

	// onHit, if set, is called for every match found, in discovery order
	// within each packet (spec §6 --verbose).
	onHit func(matcher.Hit)

	stats Stats

	wg sync.WaitGroup
}

// NewScanner returns a Scanner that will drain queue against machine,
// consulting dict for skip opportunities if non-nil. id is only used to
// label diagnostics.
func NewScanner(id int, machine *automaton.Machine, queue *pipeline.Queue, dict *dictionary.Dictionary) *Scanner {
	return &Scanner{id: id, machine: machine, queue: queue, dict: dict}
}

// ID returns the scanner's diagnostic label.
func (s *Scanner) ID() int {
	return s.id
}

// SetHitSink registers fn to be called for every match this scanner finds,
// in discovery order within each packet. Must be called before Start.
func (s *Scanner) SetHitSink(fn func(matcher.Hit)) {
	s.onHit = fn
}

// Start runs the scan loop in a background goroutine: it repeatedly pops a
// packet from the queue, scans it, and loops until the queue is drained
// and closed or ctx is canceled (spec §5 "Cancellation and timeouts": "an
// external collaborator may abort by closing the input; workers must
// detect and exit cleanly"). Call Join to wait for completion and read
// Stats.
func (s *Scanner) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			pkt, ok := s.queue.PopContext(ctx)
			if !ok {
				return
			}
			s.scanPacket(pkt)
		}
	}()
}

// Join blocks until Start's goroutine has exited. Stats is safe to read
// only after Join returns.
func (s *Scanner) Join() {
	s.wg.Wait()
}

// Stats returns this scanner's accumulated counters. Must be called after
// Join.
func (s *Scanner) Stats() Stats {
	return s.stats
}

// scanPacket resets the rolling hash and matching state to root, scans the
// packet to completion (interleaving a dictionary lookahead at every byte
// of the rolling window when a dictionary is configured), and releases the
// packet (spec §4.5 "per packet: reset the rolling hash and the matching
// state to root").
func (s *Scanner) scanPacket(pkt *pipeline.Packet) {
	s.stats.Packets++
	s.stats.Bytes += uint64(len(pkt.Payload))

	var skip matcher.SkipLookahead
	if s.dict != nil && len(pkt.Payload) >= s.dict.Width() {
		skip = s.makeSkip(pkt.Payload)
	}

	hits := matcher.MatchWithStats(s.machine, pkt.Payload, skip, &s.stats.Transitions)
	s.stats.Matches += uint64(len(hits))
	if s.onHit != nil {
		for _, h := range hits {
			s.onHit(h)
		}
	}
}

// makeSkip builds a matcher.SkipLookahead closed over one packet's payload
// and a fresh RollingHash. The rolling hash gates the decision: only a
// window whose incrementally maintained digest matches a registered
// chunk's digest (MayContainRollingHash) ever reaches the dictionary's
// content hash and Bloom test; dictionary.Dictionary.Lookup performs the
// final byte-exact verification (spec §4.4).
func (s *Scanner) makeSkip(payload []byte) matcher.SkipLookahead {
	width := s.dict.Width()
	rh := dictionary.NewRollingHash(width)
	lastCursor := -1

	return func(cursor int, current automaton.StateID) (int, automaton.StateID, []matcher.Hit, bool) {
		if cursor+width > len(payload) {
			return 0, 0, nil, false
		}
		window := payload[cursor : cursor+width]

		if lastCursor >= 0 && lastCursor == cursor-1 {
			rh.Roll(payload[lastCursor], window[width-1])
		} else {
			rh.Init(window)
		}
		lastCursor = cursor

		s.stats.RollingHashChecks++
		if !s.dict.MayContainRollingHash(rh.Sum()) {
			return 0, 0, nil, false
		}

		s.stats.BloomChecks++
		if !s.dict.MayContain(window) {
			return 0, 0, nil, false
		}
		s.stats.BloomPositives++

		entry, ok := s.dict.Lookup(window, current)
		if !ok {
			return 0, 0, nil, false
		}
		s.stats.DictHits++
		s.stats.BytesSkipped += uint64(width)

		inner := make([]matcher.Hit, len(entry.Inner))
		copy(inner, entry.Inner)
		return cursor + width, entry.ExitState, inner, true
	}
}
