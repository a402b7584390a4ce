package dictionary

import (
	"encoding/binary"
	"io"

	"github.com/coregx/acscan/acerr"
	"github.com/coregx/acscan/automaton"
	"github.com/coregx/acscan/matcher"
)

// dictMagic identifies a dictionary file, the counterpart of automaton's
// "ACSM" magic (spec §6 "Dictionary file format").
var dictMagic = [4]byte{'A', 'C', 'D', 'X'}

const dictVersion = 1

// Load parses the on-disk dictionary format of spec §6 ("Sequence of
// (chunk_bytes[W], entry_state_id, exit_state_id, inner_match_count,
// [inner match records]), prefixed by the entry count and Bloom
// parameters"): a header (magic, version, chunk width, Bloom bit count,
// Bloom hash count, entry count), then that many entries. All multi-byte
// integers are little-endian, matching the automaton file format.
func Load(r io.Reader) (*Dictionary, error) {
	var header struct {
		Magic       [4]byte
		Version     uint32
		Width       uint32
		BloomBits   uint32
		BloomHashes uint32
		EntryCount  uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, &acerr.LoadError{Err: err}
	}
	if header.Magic != dictMagic {
		return nil, &acerr.LoadError{Err: acerr.ErrBadMagic}
	}
	if header.Version != dictVersion {
		return nil, &acerr.LoadError{Err: acerr.ErrUnsupportedVersion}
	}

	d := NewDictionary(int(header.Width), int(header.BloomBits), int(header.BloomHashes))

	for i := uint32(0); i < header.EntryCount; i++ {
		e, err := loadEntry(r, int(header.Width))
		if err != nil {
			return nil, &acerr.LoadError{Offset: int64(i), Err: err}
		}
		d.Add(e)
	}
	return d, nil
}

func loadEntry(r io.Reader, width int) (*Entry, error) {
	chunk := make([]byte, width)
	if _, err := io.ReadFull(r, chunk); err != nil {
		return nil, err
	}

	var fixed struct {
		EntryState uint32
		ExitState  uint32
		InnerCount uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &fixed); err != nil {
		return nil, err
	}

	inner := make([]matcher.Hit, 0, fixed.InnerCount)
	for i := uint32(0); i < fixed.InnerCount; i++ {
		var rec struct {
			Offset     uint32
			PatternLen uint32
		}
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			return nil, err
		}
		pattern := make([]byte, rec.PatternLen)
		if _, err := io.ReadFull(r, pattern); err != nil {
			return nil, err
		}
		inner = append(inner, matcher.Hit{Pattern: pattern, Offset: int(rec.Offset)})
	}

	return &Entry{
		Chunk:      chunk,
		EntryState: automaton.StateID(fixed.EntryState),
		ExitState:  automaton.StateID(fixed.ExitState),
		Inner:      inner,
	}, nil
}
