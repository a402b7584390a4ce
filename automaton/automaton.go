// Package automaton implements the heterogeneous-state-encoding Aho-Corasick
// automaton described in spec §3/§4: a dense table of nodes, each encoded in
// whichever of four wire formats best suits its fan-out, sharing one
// pattern table. This package owns the data model (C1, C2); package matcher
// drives a byte stream through it (C3).
package automaton

import (
	"fmt"

	"github.com/coregx/acscan/internal/bitset"
)

// StateID identifies a state, dense over [0, N). Id 0 is always the root.
type StateID uint32

// InvalidState is the sentinel used in goto/failure/chain fields that have
// no resolvable target (e.g. a LookupTable slot with no goto for that byte).
const InvalidState StateID = 0xFFFFFFFF

// Root is the id of the automaton's root state.
const Root StateID = 0

// Encoding is the 3-bit discriminator selecting a node's goto representation.
type Encoding uint8

const (
	// EncLookupTable is a dense 256-entry next-state array. Best fan-out.
	EncLookupTable Encoding = iota
	// EncBitmap is a 256-bit presence bitmap plus a packed next-state array.
	EncBitmap
	// EncLinear is a small sorted (byte, next) list. Best for low fan-out.
	EncLinear
	// EncPathCompressed is a collapsed chain of (byte, next) transitions.
	EncPathCompressed
	// EncSimpleLinear is EncLinear's wire-compatible twin used only by the
	// non-dictionary-aware matchIterativeSimple fast path (§3: "Simple LE").
	// It never performs the root-bounce advance and must never be mixed
	// with the other four encodings in one machine (§9 Open Questions).
	EncSimpleLinear
)

func (e Encoding) String() string {
	switch e {
	case EncLookupTable:
		return "LookupTable"
	case EncBitmap:
		return "Bitmap"
	case EncLinear:
		return "Linear"
	case EncPathCompressed:
		return "PathCompressed"
	case EncSimpleLinear:
		return "SimpleLinear"
	default:
		return fmt.Sprintf("Encoding(%d)", uint8(e))
	}
}

// Flags holds the per-state header bits described in spec §3.
type Flags uint8

const (
	// FlagAcceptsAny marks an accepting state: one at which some pattern
	// ends. The Simple driver (matcher.MatchSimple) reads it to find pattern
	// completions.
	FlagAcceptsAny Flags = 1 << iota
	// FlagExtendedPatternIndex is the header bit that, in the compiler's
	// packed format, extends a 16-bit pattern-table index to 17 bits. It is
	// carried through Load and Save unchanged; no driver reads it, because
	// PatternTable is keyed by the full StateID.
	FlagExtendedPatternIndex
)

// Header is the common prefix every state encoding shares: the encoding
// tag, header flags, the classic Aho-Corasick failure link, and the
// 256-bit accepting-byte bitmap.
type Header struct {
	ID      StateID
	Tag     Encoding
	Flags   Flags
	Failure StateID
	Accept  bitset.Set256
}

// AcceptsAny reports whether FlagAcceptsAny is set on this state.
func (h *Header) AcceptsAny() bool {
	return h.Flags&FlagAcceptsAny != 0
}

// Transition is the result of a single next() dispatch (spec §4.1's
// next(state, input, cursor) contract).
type Transition struct {
	Next     StateID
	Advanced bool
	Match    bool
	// Rank is the popcount of bits < the triggering byte within the
	// state's accept bitmap; valid only when Match is true. The caller
	// (package matcher) uses it, together with the source state id, to
	// look up the specific pattern text in the PatternTable.
	Rank int
}

// Node is implemented by each of the four (plus Simple) state encodings.
// Dispatch happens via a type switch on the concrete node type inside Next,
// called from the matching engine's hot loop (spec §9: "benchmarks justify an
// inlined switch"), not via this interface — Node exists so Table can store
// heterogeneous encodings in one dense slice.
type Node interface {
	// header returns the node's common header.
	header() *Header
}

// LookupTableNode is the dense array encoding (§4.1 "Lookup-table next").
// Next holds one entry per possible input byte; InvalidState marks "no
// goto, use the failure link".
type LookupTableNode struct {
	Header
	Next [256]StateID
}

func (n *LookupTableNode) header() *Header { return &n.Header }

// BitmapNode is the popcount-packed encoding (§4.1 "Bitmap next"). Next is
// indexed by the rank of the queried byte within Present.
type BitmapNode struct {
	Header
	Present bitset.Set256
	Next    []StateID
}

func (n *BitmapNode) header() *Header { return &n.Header }

// Edge is one (byte, next-state) pair in a linear-encoded node's sorted
// transition list.
type Edge struct {
	Byte byte
	Next StateID
}

// LinearNode is the small sorted-list encoding (§4.1 "Linear next").
type LinearNode struct {
	Header
	Edges []Edge // sorted by Byte
}

func (n *LinearNode) header() *Header { return &n.Header }

// PathCompressedNode represents a single position inside a chain of
// transitions collapsed from a linear run (§4.1 "Path-compressed next").
// Each position in the original run gets its own PathCompressedNode and its
// own StateID; Next is the id of the node one position further along the
// chain, or — for the chain's last position — the id of the chain's
// accepting successor state. Advancing through the whole chain is therefore
// just an ordinary sequence of per-byte transitions between these nodes.
// Each node is a single-edge state with its own Header; the loader reads it
// like any other node.
type PathCompressedNode struct {
	Header
	Byte byte
	Next StateID
}

func (n *PathCompressedNode) header() *Header { return &n.Header }

// SimpleLinearNode is wire-compatible with LinearNode but is only ever
// driven by the Simple matching driver, which skips the root fast path and
// the root-bounce advance rule entirely (§4.3 "Simple driver").
type SimpleLinearNode struct {
	Header
	Edges []Edge
}

func (n *SimpleLinearNode) header() *Header { return &n.Header }
