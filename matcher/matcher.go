// Package matcher drives a byte stream through an automaton.Machine (C3).
// It implements the iterative driver that is the contract (spec §4.3), a
// recursive driver kept for parity testing on small inputs, and the Simple
// driver used for homogeneous Simple-LE machines.
package matcher

import (
	"github.com/coregx/acscan/acerr"
	"github.com/coregx/acscan/automaton"
)

// Hit is one reported pattern occurrence: the pattern bytes and the byte
// offset in the input at which it started.
type Hit struct {
	Pattern []byte
	Offset  int
}

// DefaultMaxRecursionDepth caps the recursive driver (spec §9 Design Notes:
// "deep inputs would blow the stack"; MatchRecursive returns
// acerr.ErrRecursionLimit rather than overflow).
const DefaultMaxRecursionDepth = 4096

// Match runs the iterative driver over input and reports whether any
// pattern was found, without recording which ones (spec §4.3 top-level
// entry point, non-verbose mode).
func Match(m *automaton.Machine, input []byte) bool {
	found := false
	walk(m, input, func(h Hit) { found = true }, nil, nil)
	return found
}

// MatchVerbose runs the iterative driver and returns every matched
// (pattern, offset) pair in discovery order (spec §4.3 verbose mode, and
// the testable properties of §8: completeness, soundness, in left-to-right
// discovery order).
func MatchVerbose(m *automaton.Machine, input []byte) []Hit {
	var hits []Hit
	walk(m, input, func(h Hit) { hits = append(hits, h) }, nil, nil)
	return hits
}

// SkipLookahead is consulted once per byte of the rolling window by the
// iterative driver, giving package dictionary a chance to jump the cursor
// past a recognized chunk (C4, spec §4.4). It returns the new cursor and
// state if a skip was taken, and ok=false to fall through to an ordinary
// automaton.Next call.
type SkipLookahead func(cursor int, current automaton.StateID) (newCursor int, newState automaton.StateID, innerHits []Hit, ok bool)

// MatchWithSkip is MatchVerbose's dictionary-aware counterpart, used by
// package scanner when a dictionary is configured (C4/C5 integration point).
// Dictionary transparency (spec §8 property 5) requires that the result is
// identical to MatchVerbose's when skip never fires.
func MatchWithSkip(m *automaton.Machine, input []byte, skip SkipLookahead) []Hit {
	var hits []Hit
	walk(m, input, func(h Hit) { hits = append(hits, h) }, skip, nil)
	return hits
}

// Stats accumulates per-transition counters across one or more calls to
// MatchWithStats, mirroring the COUNT_FAIL_PERCENT instrumentation in the
// original DumpReader.c (summed across scanners at join there; here,
// summed across packets by package scanner).
type Stats struct {
	Gotos    uint64 // transitions that advanced the cursor along a real edge
	Failures uint64 // transitions that took a failure link (including root-bounce)
}

// MatchWithStats is MatchWithSkip's instrumented counterpart: every
// transition increments stats.Gotos or stats.Failures. stats may be nil,
// in which case no counting happens.
func MatchWithStats(m *automaton.Machine, input []byte, skip SkipLookahead, stats *Stats) []Hit {
	var hits []Hit
	walk(m, input, func(h Hit) { hits = append(hits, h) }, skip, stats)
	return hits
}

// walk is the iterative driver (spec §4.3). cursor and current are
// maintained exactly as described: the root fast path short-circuits
// root-to-child transitions via Machine.FirstLevel, the root-bounce rule
// forces forward progress on a non-matching byte at the root, and a match
// is recorded via the pattern table before advancing to the next state.
func walk(m *automaton.Machine, input []byte, emit func(Hit), skip SkipLookahead, stats *Stats) {
	cursor := 0
	current := automaton.Root
	states := m.States

	for cursor < len(input) {
		if skip != nil {
			if newCursor, newState, inner, ok := skip(cursor, current); ok {
				for _, h := range inner {
					emit(Hit{Pattern: h.Pattern, Offset: cursor + h.Offset})
				}
				cursor = newCursor
				current = newState
				continue
			}
		}

		b := input[cursor]
		var tr automaton.Transition
		if current == automaton.Root {
			tr = rootFastPath(m, b)
		} else {
			tr = automaton.Next(states.Get(current), b)
		}

		if current == automaton.Root && tr.Next == automaton.Root && !tr.Advanced {
			// Root-bounce invariant (§4.3 step 3): a non-matching byte at
			// the root must still advance the cursor, or scanning a
			// pattern-free byte at the root would loop forever.
			cursor++
			if stats != nil {
				stats.Failures++
			}
		} else if tr.Advanced {
			cursor++
			if stats != nil {
				stats.Gotos++
			}
		} else if stats != nil {
			stats.Failures++
		}

		if tr.Match {
			if group, ok := m.Patterns.Lookup(current, tr.Rank); ok {
				for _, pat := range group {
					emit(Hit{Pattern: pat, Offset: cursor - len(pat)})
				}
			}
		}

		current = tr.Next
	}
}

// rootFastPath implements the 256-entry root specialization of §4.3 step 1:
// a precomputed "root -> child" lookup that avoids dispatching through
// whatever encoding the root state actually uses.
func rootFastPath(m *automaton.Machine, b byte) automaton.Transition {
	next := m.FirstLevel[b]
	if next == automaton.InvalidState {
		return automaton.Transition{Next: automaton.Root, Advanced: false, Match: false}
	}
	if next == automaton.Root {
		return automaton.Transition{Next: automaton.Root, Advanced: false, Match: false}
	}
	var h *automaton.Header
	switch s := m.States.Get(automaton.Root).(type) {
	case *automaton.LookupTableNode:
		h = &s.Header
	case *automaton.BitmapNode:
		h = &s.Header
	case *automaton.LinearNode:
		h = &s.Header
	case *automaton.PathCompressedNode:
		h = &s.Header
	case *automaton.SimpleLinearNode:
		h = &s.Header
	}
	match := h.Accept.Test(b)
	t := automaton.Transition{Next: next, Advanced: true, Match: match}
	if match {
		t.Rank = h.Accept.Rank(b)
	}
	return t
}

// MatchRecursive is semantically equivalent to the iterative driver (spec
// §4.3 "Recursive driver"), provided for reference and for testing against
// small inputs. It is depth-capped rather than allowed to overflow the
// stack, per §9 Design Notes.
func MatchRecursive(m *automaton.Machine, input []byte) ([]Hit, error) {
	var hits []Hit
	err := matchRecursive(m, input, 0, automaton.Root, &hits, 0)
	return hits, err
}

func matchRecursive(m *automaton.Machine, input []byte, cursor int, current automaton.StateID, hits *[]Hit, depth int) error {
	if cursor >= len(input) {
		return nil
	}
	if depth > DefaultMaxRecursionDepth {
		return acerr.ErrRecursionLimit
	}

	b := input[cursor]
	var tr automaton.Transition
	if current == automaton.Root {
		tr = rootFastPath(m, b)
	} else {
		tr = automaton.Next(m.States.Get(current), b)
	}

	nextCursor := cursor
	if current == automaton.Root && tr.Next == automaton.Root && !tr.Advanced {
		nextCursor++
	} else if tr.Advanced {
		nextCursor++
	}

	if tr.Match {
		if group, ok := m.Patterns.Lookup(current, tr.Rank); ok {
			for _, pat := range group {
				*hits = append(*hits, Hit{Pattern: pat, Offset: nextCursor - len(pat)})
			}
		}
	}

	return matchRecursive(m, input, nextCursor, tr.Next, hits, depth+1)
}

// MatchSimple runs the Simple driver (spec §4.3 "Simple driver"): no root
// fast path, Simple-LE encoding only, pattern discovery via the destination
// state's FlagAcceptsAny header flag and row 0 of its pattern-table entry
// rather than a bitmap rank. It panics if m was not
// built exclusively from EncSimpleLinear states — the compiler must
// guarantee that, per §9 Open Questions, and MatchSimple is the one driver
// allowed to assume it.
func MatchSimple(m *automaton.Machine, input []byte) []Hit {
	var hits []Hit
	cursor := 0
	current := automaton.Root
	for cursor < len(input) {
		b := input[cursor]
		node := m.States.Get(current)
		sl, ok := node.(*automaton.SimpleLinearNode)
		if !ok {
			panic("matcher: MatchSimple requires an all-Simple-LE machine")
		}
		tr := automaton.Next(sl, b)

		if current == automaton.Root && tr.Next == automaton.Root && !tr.Advanced {
			cursor++
		} else if tr.Advanced {
			cursor++
		}

		// Pattern discovery for the Simple driver uses the header's
		// accepts-any-pattern flag directly (spec §4.3: "pattern discovery
		// uses the second high bit of the header size byte to mark
		// accepting states" — here, FlagAcceptsAny), rather than a bitmap
		// rank: Simple machines register exactly one pattern per
		// accepting state, since the compiler never mixes Simple with the
		// general encodings that need bitmap ranking for suffix sharing.
		nextNode := m.States.Get(tr.Next).(*automaton.SimpleLinearNode)
		if nextNode.Flags&automaton.FlagAcceptsAny != 0 {
			if group, ok := m.Patterns.Lookup(nextNode.ID, 0); ok {
				for _, pat := range group {
					hits = append(hits, Hit{Pattern: pat, Offset: cursor - len(pat)})
				}
			}
		}

		current = tr.Next
	}
	return hits
}
