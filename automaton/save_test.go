package automaton

import (
	"bytes"
	"testing"
)

// buildTwoStateMachine returns an in-memory Machine equivalent to the one
// TestLoadRoundTripsSingleBytePatternMachine hand-encodes: root plus one
// accepting state reached on 'x'.
func buildTwoStateMachine(t *testing.T) *Machine {
	t.Helper()
	table := NewTable(2)

	root := &LookupTableNode{Header: Header{Failure: InvalidState}}
	for i := range root.Next {
		root.Next[i] = InvalidState
	}
	root.Next['x'] = 1
	root.Accept.Set('x')
	table.Set(Root, root)

	accept := &LookupTableNode{Header: Header{Failure: Root}}
	for i := range accept.Next {
		accept.Next[i] = InvalidState
	}
	table.Set(StateID(1), accept)

	patterns := PatternTable{
		StateID(0): {{[]byte("x")}},
	}
	m, err := NewMachine(table, patterns)
	if err != nil {
		t.Fatalf("NewMachine() error = %v", err)
	}
	return m
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	m := buildTwoStateMachine(t)

	var buf bytes.Buffer
	if err := Save(&buf, m); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load(Save(m)) error = %v", err)
	}

	if loaded.States.Len() != m.States.Len() {
		t.Fatalf("States.Len() = %d, want %d", loaded.States.Len(), m.States.Len())
	}
	if loaded.AllTableEncoded != m.AllTableEncoded {
		t.Fatalf("AllTableEncoded = %v, want %v", loaded.AllTableEncoded, m.AllTableEncoded)
	}
	if loaded.FirstLevel['x'] != m.FirstLevel['x'] {
		t.Fatalf("FirstLevel['x'] = %d, want %d", loaded.FirstLevel['x'], m.FirstLevel['x'])
	}
	group, ok := loaded.Patterns.Lookup(StateID(0), 0)
	if !ok || len(group) != 1 || string(group[0]) != "x" {
		t.Fatalf("Patterns.Lookup(0,0) after round trip = %v, %v; want [\"x\"]", group, ok)
	}
}
