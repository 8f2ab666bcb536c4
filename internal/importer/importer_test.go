package importer

import (
	"testing"

	"github.com/cuemby/linkproxy/internal/hashing"
	"github.com/cuemby/linkproxy/internal/model"
)

func TestDistinctSubjectsPreservesFirstSeenOrder(t *testing.T) {
	table := hashing.NewTable(5)
	s1 := table.Ensure("http://x/1")
	s2 := table.Ensure("http://x/2")
	p := table.Ensure("http://x/name")
	v := table.Ensure("Bob")
	dt := table.Ensure("http://www.w3.org/2001/XMLSchema#string")

	m := model.HashModel{
		{Subject: s1, Predicate: p, Value: v, Datatype: dt},
		{Subject: s2, Predicate: p, Value: v, Datatype: dt},
		{Subject: s1, Predicate: p, Value: v, Datatype: dt},
	}

	got := distinctSubjects(table, m)
	want := []string{"http://x/1", "http://x/2"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDistinctSubjectsEmptyModel(t *testing.T) {
	table := hashing.NewTable(5)
	if got := distinctSubjects(table, nil); got != nil {
		t.Errorf("expected nil for empty model, got %v", got)
	}
}
