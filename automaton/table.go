package automaton

import (
	"fmt"

	"github.com/coregx/acscan/acerr"
)

// Table is the dense, id-addressed array of states (C2). It owns every
// node in one contiguous slice for cache locality (§5 "Memory": "storing
// them in one arena and addressing by id gives cache locality"), and
// supports a one-shot Compress that trims to the actually assigned prefix
// after construction, after which it is treated as immutable and shared
// read-only across every scanner.
type Table struct {
	states []Node
}

// NewTable allocates a table with room for capacity states.
func NewTable(capacity int) *Table {
	return &Table{states: make([]Node, capacity)}
}

// Get returns the node at id. It panics if id is out of range; callers that
// read ids from untrusted input must validate them first (package automaton's
// loader does this once at load time, per spec §7: "a load-time integrity
// failure detected when indexing the id map").
func (t *Table) Get(id StateID) Node {
	return t.states[id]
}

// Set installs node at id, after stamping the node's header with that id.
func (t *Table) Set(id StateID, n Node) {
	n.header().ID = id
	t.states[id] = n
}

// Len returns the number of addressable states.
func (t *Table) Len() int {
	return len(t.states)
}

// Compress trims the backing array to [0, n), matching
// compressStateTable's behavior of releasing the over-allocated tail once
// construction has assigned every state its final id.
func (t *Table) Compress(n int) {
	t.states = append([]Node(nil), t.states[:n]...)
}

// Validate checks every Failure/Next/Edge/Chain field in the table against
// the invariant of spec §3: "every state id referenced by any goto,
// failure, or compressed-path field is < N and resolvable". It is the load
// path's integrity check, run once before a machine is ever handed to a
// scanner, so the hot loop in package matcher never needs to.
func (t *Table) Validate() error {
	n := StateID(len(t.states))
	check := func(id StateID, what string) error {
		if id != InvalidState && id >= n {
			return fmt.Errorf("state id %d out of range (table has %d states): %s", id, n, what)
		}
		return nil
	}
	for i, node := range t.states {
		if node == nil {
			return fmt.Errorf("state %d is unset", i)
		}
		h := node.header()
		if err := check(h.Failure, "failure link"); err != nil {
			return err
		}
		switch s := node.(type) {
		case *LookupTableNode:
			for _, next := range s.Next {
				if next == StateID(i) { // self-loop on no-goto byte is fine
					continue
				}
				if err := check(next, "lookup-table goto"); err != nil {
					return err
				}
			}
		case *BitmapNode:
			for _, next := range s.Next {
				if err := check(next, "bitmap goto"); err != nil {
					return err
				}
			}
		case *LinearNode:
			for _, e := range s.Edges {
				if err := check(e.Next, "linear edge"); err != nil {
					return err
				}
			}
		case *PathCompressedNode:
			if err := check(s.Next, "path-compressed chain"); err != nil {
				return err
			}
		case *SimpleLinearNode:
			for _, e := range s.Edges {
				if err := check(e.Next, "simple-linear edge"); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// PatternGroup is every pattern that completes together at one (state,
// rank) slot. Most slots hold exactly one pattern; a slot holds more than
// one when suffix sharing puts several patterns' end positions at the same
// transition — e.g. "she" and "he" both complete on the byte that lands on
// "she"'s state, because "he" is a suffix of "she" and was folded into the
// same accepting slot at build time (§3 "Pattern Table": "a single state
// can be the end of multiple patterns of different lengths").
type PatternGroup = [][]byte

// PatternTable maps a state id to the ordered list of pattern groups that
// terminate there, indexed by the rank computed from the state's accept
// bitmap at match time.
type PatternTable map[StateID][]PatternGroup

// Lookup returns the pattern group for state id at rank k (the k-th
// accepting slot registered at that state), and whether one exists.
func (p PatternTable) Lookup(id StateID, rank int) (PatternGroup, bool) {
	row, ok := p[id]
	if !ok || rank < 0 || rank >= len(row) {
		return nil, false
	}
	return row[rank], true
}

// Machine bundles everything a scan needs: the state table, the pattern
// table, and the precomputed root fast-path lookup (§4.3, §9 "Root fast
// path"). It is built once by the external compiler/loader and shared
// read-only by every scanner for the run's duration (§5 "Shared-resource
// policy").
type Machine struct {
	States     *Table
	Patterns   PatternTable
	FirstLevel [256]StateID

	// AllTableEncoded is true iff every state uses EncLookupTable. The
	// --dict flag is only accepted for such a machine (§9 Open Questions,
	// §6 "--dict"): acerr.ErrDictRequiresTableMachine otherwise.
	AllTableEncoded bool
}

// NewMachine wraps a validated table/pattern table pair into a Machine,
// deriving AllTableEncoded and the root fast-path table.
func NewMachine(states *Table, patterns PatternTable) (*Machine, error) {
	if err := states.Validate(); err != nil {
		return nil, err
	}
	m := &Machine{States: states, Patterns: patterns, AllTableEncoded: true}
	for i := range m.FirstLevel {
		m.FirstLevel[i] = InvalidState
	}

	seenSimple, seenNonSimple := false, false
	for id := 0; id < states.Len(); id++ {
		n := states.Get(StateID(id))
		if _, ok := n.(*SimpleLinearNode); ok {
			seenSimple = true
		} else {
			seenNonSimple = true
		}
		if _, ok := n.(*LookupTableNode); !ok {
			m.AllTableEncoded = false
		}
	}
	if seenSimple && seenNonSimple {
		return nil, acerr.ErrMixedSimpleEncoding
	}

	root := states.Get(Root)
	for b := 0; b < 256; b++ {
		tr := Next(root, byte(b))
		if tr.Advanced {
			m.FirstLevel[b] = tr.Next
		}
	}
	return m, nil
}
