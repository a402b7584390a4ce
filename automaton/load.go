package automaton

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/coregx/acscan/acerr"
)

// fileMagic identifies an automaton file (§6 on-disk format).
var fileMagic = [4]byte{'A', 'C', 'S', 'M'}

const fileVersion uint32 = 1

// fileHeader is the fixed-size prefix of an automaton file, little-endian
// throughout.
type fileHeader struct {
	Magic      [4]byte
	Version    uint32
	StateCount uint32
}

// Load parses the compiler's on-disk automaton format (§6/§9 "Loader"): a
// header, a dense state arena (one encoded node per id, in id order), and
// a pattern table section. Every goto/failure/chain field is validated
// against the loaded state count, and a machine mixing Simple-LE with any
// other encoding is rejected — both per Table.Validate and NewMachine,
// wrapped here as *acerr.LoadError so the hot loop in package matcher never
// needs to handle a malformed machine.
func Load(r io.Reader) (*Machine, error) {
	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, &acerr.LoadError{Err: err}
	}
	if hdr.Magic != fileMagic {
		return nil, &acerr.LoadError{Err: acerr.ErrBadMagic}
	}
	if hdr.Version != fileVersion {
		return nil, &acerr.LoadError{Err: acerr.ErrUnsupportedVersion}
	}

	table := NewTable(int(hdr.StateCount))
	for i := uint32(0); i < hdr.StateCount; i++ {
		node, err := loadNode(r)
		if err != nil {
			return nil, &acerr.LoadError{Offset: int64(i), Err: err}
		}
		table.Set(StateID(i), node)
	}

	patterns, err := loadPatternTable(r)
	if err != nil {
		return nil, &acerr.LoadError{Err: err}
	}

	m, err := NewMachine(table, patterns)
	if err != nil {
		return nil, &acerr.LoadError{Err: err}
	}
	return m, nil
}

func loadHeaderFields(r io.Reader) (Header, error) {
	var raw struct {
		Tag     uint8
		Flags   uint8
		Failure uint32
		Accept  [32]byte
	}
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return Header{}, err
	}
	return Header{
		Tag:     Encoding(raw.Tag),
		Flags:   Flags(raw.Flags),
		Failure: StateID(raw.Failure),
		Accept:  raw.Accept,
	}, nil
}

func loadNode(r io.Reader) (Node, error) {
	h, err := loadHeaderFields(r)
	if err != nil {
		return nil, err
	}
	switch h.Tag {
	case EncLookupTable:
		var next [256]uint32
		if err := binary.Read(r, binary.LittleEndian, &next); err != nil {
			return nil, err
		}
		n := &LookupTableNode{Header: h}
		for i, v := range next {
			if v == 0xFFFFFFFF {
				n.Next[i] = InvalidState
			} else {
				n.Next[i] = StateID(v)
			}
		}
		return n, nil

	case EncBitmap:
		var count uint32
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return nil, err
		}
		var present [32]byte
		if err := binary.Read(r, binary.LittleEndian, &present); err != nil {
			return nil, err
		}
		next := make([]StateID, count)
		for i := range next {
			var v uint32
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, err
			}
			next[i] = StateID(v)
		}
		n := &BitmapNode{Header: h, Next: next}
		n.Present = present
		return n, nil

	case EncLinear, EncSimpleLinear:
		var count uint32
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return nil, err
		}
		edges := make([]Edge, count)
		for i := range edges {
			var raw struct {
				Byte byte
				Next uint32
			}
			if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
				return nil, err
			}
			edges[i] = Edge{Byte: raw.Byte, Next: StateID(raw.Next)}
		}
		if h.Tag == EncSimpleLinear {
			return &SimpleLinearNode{Header: h, Edges: edges}, nil
		}
		return &LinearNode{Header: h, Edges: edges}, nil

	case EncPathCompressed:
		var raw struct {
			Byte byte
			Next uint32
		}
		if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
			return nil, err
		}
		return &PathCompressedNode{Header: h, Byte: raw.Byte, Next: StateID(raw.Next)}, nil

	default:
		return nil, fmt.Errorf("unknown state encoding tag %v", h.Tag)
	}
}

// loadPatternTable reads the pattern table section: a count of distinct
// state ids that own at least one row, followed by, per state, its rows
// (in rank order) and each row's pattern group.
func loadPatternTable(r io.Reader) (PatternTable, error) {
	var stateCount uint32
	if err := binary.Read(r, binary.LittleEndian, &stateCount); err != nil {
		return nil, err
	}
	patterns := make(PatternTable, stateCount)
	for i := uint32(0); i < stateCount; i++ {
		var head struct {
			StateID  uint32
			RowCount uint32
		}
		if err := binary.Read(r, binary.LittleEndian, &head); err != nil {
			return nil, err
		}
		rows := make([]PatternGroup, head.RowCount)
		for row := range rows {
			var groupCount uint32
			if err := binary.Read(r, binary.LittleEndian, &groupCount); err != nil {
				return nil, err
			}
			group := make(PatternGroup, groupCount)
			for g := range group {
				var patLen uint32
				if err := binary.Read(r, binary.LittleEndian, &patLen); err != nil {
					return nil, err
				}
				pat := make([]byte, patLen)
				if _, err := io.ReadFull(r, pat); err != nil {
					return nil, err
				}
				group[g] = pat
			}
			rows[row] = group
		}
		patterns[StateID(head.StateID)] = rows
	}
	return patterns, nil
}
