package automaton

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/coregx/acscan/acerr"
)

// writeLookupHeader writes one state's shared header fields followed by its
// 256-entry LookupTable goto array, matching the §6 on-disk layout that
// Load expects.
func writeLookupHeader(t *testing.T, buf *bytes.Buffer, failure uint32, accept [32]byte, next [256]uint32) {
	t.Helper()
	raw := struct {
		Tag     uint8
		Flags   uint8
		Failure uint32
		Accept  [32]byte
	}{Tag: uint8(EncLookupTable), Failure: failure, Accept: accept}
	if err := binary.Write(buf, binary.LittleEndian, raw); err != nil {
		t.Fatal(err)
	}
	if err := binary.Write(buf, binary.LittleEndian, next); err != nil {
		t.Fatal(err)
	}
}

// TestLoadRoundTripsSingleBytePatternMachine hand-encodes a two-state,
// all-LookupTable machine matching the single-byte pattern "x" and confirms
// Load reconstructs a Machine whose behavior matches what NewMachine would
// build directly.
func TestLoadRoundTripsSingleBytePatternMachine(t *testing.T) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, fileHeader{
		Magic: fileMagic, Version: fileVersion, StateCount: 2,
	}); err != nil {
		t.Fatal(err)
	}

	var rootAccept [32]byte
	rootAccept['x'/8] |= 1 << ('x' % 8)
	var rootNext [256]uint32
	for i := range rootNext {
		rootNext[i] = 0xFFFFFFFF
	}
	rootNext['x'] = 1
	writeLookupHeader(t, &buf, 0xFFFFFFFF, rootAccept, rootNext)

	var acceptNext [256]uint32
	for i := range acceptNext {
		acceptNext[i] = 0xFFFFFFFF
	}
	writeLookupHeader(t, &buf, 0, [32]byte{}, acceptNext)

	// Pattern table: one state (id 0) owning one row (rank 0) with one
	// pattern in its group ("x").
	if err := binary.Write(&buf, binary.LittleEndian, uint32(1)); err != nil {
		t.Fatal(err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, struct {
		StateID  uint32
		RowCount uint32
	}{StateID: 0, RowCount: 1}); err != nil {
		t.Fatal(err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint32(1)); err != nil { // groupCount
		t.Fatal(err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint32(1)); err != nil { // patLen
		t.Fatal(err)
	}
	buf.WriteString("x")

	m, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.States.Len() != 2 {
		t.Fatalf("States.Len() = %d, want 2", m.States.Len())
	}
	if !m.AllTableEncoded {
		t.Fatal("AllTableEncoded = false, want true for an all-LookupTable machine")
	}
	if m.FirstLevel['x'] != StateID(1) {
		t.Fatalf("FirstLevel['x'] = %d, want 1", m.FirstLevel['x'])
	}
	group, ok := m.Patterns.Lookup(StateID(0), 0)
	if !ok || len(group) != 1 || string(group[0]) != "x" {
		t.Fatalf("Patterns.Lookup(0,0) = %v, %v; want [\"x\"]", group, ok)
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, fileHeader{
		Magic: [4]byte{'X', 'X', 'X', 'X'}, Version: fileVersion, StateCount: 0,
	})
	_, err := Load(&buf)
	if err == nil {
		t.Fatal("expected Load to reject a bad magic")
	}
	var loadErr *acerr.LoadError
	if !errors.As(err, &loadErr) || !errors.Is(loadErr.Unwrap(), acerr.ErrBadMagic) {
		t.Fatalf("Load() error = %v, want a *acerr.LoadError wrapping ErrBadMagic", err)
	}
}

func TestLoadRejectsUnsupportedVersion(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, fileHeader{
		Magic: fileMagic, Version: 99, StateCount: 0,
	})
	_, err := Load(&buf)
	if !errors.Is(err, acerr.ErrUnsupportedVersion) {
		t.Fatalf("Load() error = %v, want ErrUnsupportedVersion", err)
	}
}

func TestLoadRejectsOutOfRangeStateID(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, fileHeader{
		Magic: fileMagic, Version: fileVersion, StateCount: 1,
	})
	var accept [32]byte
	var next [256]uint32
	for i := range next {
		next[i] = 0xFFFFFFFF
	}
	next['a'] = 7 // out of range: only 1 state exists
	writeLookupHeader(t, &buf, 0xFFFFFFFF, accept, next)
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // empty pattern table

	if _, err := Load(&buf); err == nil {
		t.Fatal("expected Load to reject a goto naming an out-of-range state id")
	}
}

func TestLoadRejectsTruncatedInput(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, fileHeader{
		Magic: fileMagic, Version: fileVersion, StateCount: 2,
	})
	// Only one state's worth of bytes follows, though the header claims 2.
	var accept [32]byte
	var next [256]uint32
	writeLookupHeader(t, &buf, 0xFFFFFFFF, accept, next)

	if _, err := Load(&buf); err == nil {
		t.Fatal("expected Load to reject a file truncated mid-arena")
	}
}
