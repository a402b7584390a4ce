package automaton

import (
	"encoding/binary"
	"io"

	"github.com/coregx/acscan/internal/conv"
)

// Save serializes m into the §6 on-disk format Load parses: the fixed
// header, the state arena in id order, then the pattern table. It is the
// compiler side of the loader — used by tests to round-trip a
// programmatically built Machine, and available to any future standalone
// compiler command that wants to emit the same wire format this package
// already reads.
func Save(w io.Writer, m *Machine) error {
	hdr := fileHeader{
		Magic:      fileMagic,
		Version:    fileVersion,
		StateCount: conv.IntToUint32(m.States.Len()),
	}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return err
	}
	for id := 0; id < m.States.Len(); id++ {
		if err := saveNode(w, m.States.Get(StateID(id))); err != nil {
			return err
		}
	}
	return savePatternTable(w, m.Patterns)
}

func saveHeaderFields(w io.Writer, tag Encoding, h *Header) error {
	raw := struct {
		Tag     uint8
		Flags   uint8
		Failure uint32
		Accept  [32]byte
	}{
		Tag:     uint8(tag),
		Flags:   uint8(h.Flags),
		Failure: stateIDToWire(h.Failure),
		Accept:  h.Accept,
	}
	return binary.Write(w, binary.LittleEndian, raw)
}

// stateIDToWire maps InvalidState to the on-disk sentinel 0xFFFFFFFF
// unchanged, and narrows every resolvable id through conv so a state id
// that could never fit the wire format fails loudly instead of truncating.
func stateIDToWire(id StateID) uint32 {
	if id == InvalidState {
		return 0xFFFFFFFF
	}
	return conv.Uint64ToUint32(uint64(id))
}

func saveNode(w io.Writer, n Node) error {
	h := n.header()
	switch s := n.(type) {
	case *LookupTableNode:
		if err := saveHeaderFields(w, EncLookupTable, h); err != nil {
			return err
		}
		var next [256]uint32
		for i, id := range s.Next {
			next[i] = stateIDToWire(id)
		}
		return binary.Write(w, binary.LittleEndian, next)

	case *BitmapNode:
		if err := saveHeaderFields(w, EncBitmap, h); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, conv.IntToUint32(len(s.Next))); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, s.Present); err != nil {
			return err
		}
		for _, id := range s.Next {
			if err := binary.Write(w, binary.LittleEndian, stateIDToWire(id)); err != nil {
				return err
			}
		}
		return nil

	case *LinearNode:
		return saveEdges(w, EncLinear, h, s.Edges)

	case *SimpleLinearNode:
		return saveEdges(w, EncSimpleLinear, h, s.Edges)

	case *PathCompressedNode:
		if err := saveHeaderFields(w, EncPathCompressed, h); err != nil {
			return err
		}
		raw := struct {
			Byte byte
			Next uint32
		}{Byte: s.Byte, Next: stateIDToWire(s.Next)}
		return binary.Write(w, binary.LittleEndian, raw)

	default:
		panic("automaton: Save given an unknown node encoding")
	}
}

func saveEdges(w io.Writer, tag Encoding, h *Header, edges []Edge) error {
	if err := saveHeaderFields(w, tag, h); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, conv.IntToUint32(len(edges))); err != nil {
		return err
	}
	for _, e := range edges {
		raw := struct {
			Byte byte
			Next uint32
		}{Byte: e.Byte, Next: stateIDToWire(e.Next)}
		if err := binary.Write(w, binary.LittleEndian, raw); err != nil {
			return err
		}
	}
	return nil
}

func savePatternTable(w io.Writer, patterns PatternTable) error {
	if err := binary.Write(w, binary.LittleEndian, conv.IntToUint32(len(patterns))); err != nil {
		return err
	}
	for id, rows := range patterns {
		head := struct {
			StateID  uint32
			RowCount uint32
		}{StateID: uint32(id), RowCount: conv.IntToUint32(len(rows))}
		if err := binary.Write(w, binary.LittleEndian, head); err != nil {
			return err
		}
		for _, group := range rows {
			if err := binary.Write(w, binary.LittleEndian, conv.IntToUint32(len(group))); err != nil {
				return err
			}
			for _, pat := range group {
				if err := binary.Write(w, binary.LittleEndian, conv.IntToUint32(len(pat))); err != nil {
					return err
				}
				if _, err := w.Write(pat); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
