package automaton

import (
	"errors"
	"testing"

	"github.com/coregx/acscan/acerr"
)

func TestTableSetGetStampsID(t *testing.T) {
	tbl := NewTable(2)
	n := &LinearNode{}
	tbl.Set(1, n)
	if n.ID != 1 {
		t.Fatalf("Set did not stamp header id, got %d", n.ID)
	}
	if tbl.Get(1) != Node(n) {
		t.Fatal("Get did not return the node that was Set")
	}
}

func TestTableCompress(t *testing.T) {
	tbl := NewTable(8)
	for i := 0; i < 3; i++ {
		tbl.Set(StateID(i), &LinearNode{})
	}
	tbl.Compress(3)
	if tbl.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", tbl.Len())
	}
}

func TestTableValidateRejectsOutOfRangeFailure(t *testing.T) {
	tbl := NewTable(1)
	tbl.Set(0, &LinearNode{Header: Header{Failure: 99}})
	if err := tbl.Validate(); err == nil {
		t.Fatal("expected Validate to reject an out-of-range failure link")
	}
}

func TestTableValidateRejectsOutOfRangeEdge(t *testing.T) {
	tbl := NewTable(1)
	tbl.Set(0, &LinearNode{
		Header: Header{Failure: InvalidState},
		Edges:  []Edge{{Byte: 'a', Next: 7}},
	})
	if err := tbl.Validate(); err == nil {
		t.Fatal("expected Validate to reject an out-of-range edge target")
	}
}

func TestTableValidateAcceptsWellFormedTable(t *testing.T) {
	tbl := NewTable(2)
	tbl.Set(0, &LinearNode{
		Header: Header{Failure: Root},
		Edges:  []Edge{{Byte: 'a', Next: 1}},
	})
	tbl.Set(1, &LinearNode{Header: Header{Failure: Root}})
	if err := tbl.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestTableValidateRejectsUnsetState(t *testing.T) {
	tbl := NewTable(2)
	tbl.Set(0, &LinearNode{Header: Header{Failure: InvalidState}})
	if err := tbl.Validate(); err == nil {
		t.Fatal("expected Validate to reject an unset state slot")
	}
}

func TestPatternTableLookup(t *testing.T) {
	pt := PatternTable{
		5: {
			{[]byte("he")},
			{[]byte("she"), []byte("hers")},
		},
	}
	group, ok := pt.Lookup(5, 1)
	if !ok || len(group) != 2 {
		t.Fatalf("Lookup(5,1) = %v, %v; want 2-element group", group, ok)
	}
	if _, ok := pt.Lookup(5, 9); ok {
		t.Fatal("Lookup with out-of-range rank should report ok=false")
	}
	if _, ok := pt.Lookup(404, 0); ok {
		t.Fatal("Lookup on unknown state id should report ok=false")
	}
}

func TestNewMachineRejectsMixedSimpleEncoding(t *testing.T) {
	tbl := NewTable(2)
	tbl.Set(0, &SimpleLinearNode{Header: Header{Failure: InvalidState}})
	tbl.Set(1, &LinearNode{Header: Header{Failure: InvalidState}})
	_, err := NewMachine(tbl, PatternTable{})
	if !errors.Is(err, acerr.ErrMixedSimpleEncoding) {
		t.Fatalf("NewMachine() error = %v, want ErrMixedSimpleEncoding", err)
	}
}

func TestNewMachineAllTableEncoded(t *testing.T) {
	tbl := NewTable(1)
	tbl.Set(0, &LookupTableNode{Header: Header{Failure: InvalidState}})
	for i := range tbl.states[0].(*LookupTableNode).Next {
		tbl.states[0].(*LookupTableNode).Next[i] = InvalidState
	}
	m, err := NewMachine(tbl, PatternTable{})
	if err != nil {
		t.Fatalf("NewMachine() error = %v", err)
	}
	if !m.AllTableEncoded {
		t.Fatal("expected AllTableEncoded to be true for an all-lookup-table machine")
	}
}

func TestNewMachineFirstLevelFromRoot(t *testing.T) {
	tbl := NewTable(2)
	tbl.Set(0, &LinearNode{
		Header: Header{Failure: Root},
		Edges:  []Edge{{Byte: 'a', Next: 1}},
	})
	tbl.Set(1, &LinearNode{Header: Header{Failure: Root}})
	m, err := NewMachine(tbl, PatternTable{})
	if err != nil {
		t.Fatalf("NewMachine() error = %v", err)
	}
	if m.FirstLevel['a'] != 1 {
		t.Fatalf("FirstLevel['a'] = %d, want 1", m.FirstLevel['a'])
	}
	if m.FirstLevel['b'] != InvalidState {
		t.Fatalf("FirstLevel['b'] = %d, want InvalidState", m.FirstLevel['b'])
	}
}
