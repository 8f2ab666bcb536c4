package delta

import (
	"testing"

	"github.com/cuemby/linkproxy/internal/hashing"
	"github.com/cuemby/linkproxy/internal/model"
)

const seed = 7

func stmt(table *hashing.Table, subject, predicate, value, datatype, language, graph string) model.Statement {
	return model.Statement{
		Subject:   table.Ensure(subject),
		Predicate: table.Ensure(predicate),
		Value:     table.Ensure(value),
		Datatype:  table.Ensure(datatype),
		Language:  table.Ensure(language),
		Graph:     table.Ensure(graph),
	}
}

func TestApplyDelta_EmptyDeltaIsNoop(t *testing.T) {
	table := hashing.NewTable(seed)
	current := model.HashModel{stmt(table, "id", "name", "bob", "xsd:string", "", "")}

	next := ApplyDelta(table, current, nil)

	if !next.Equal(current) {
		t.Errorf("apply_delta(c, []) should equal c, got %v", next)
	}
}

func TestApplyDelta_UnknownOperatorsDiscarded(t *testing.T) {
	table := hashing.NewTable(seed)
	delta := model.HashModel{
		stmt(table, "id", "name", "bob", "xsd:string", "", "http://example.com/unknown-op"),
	}

	next := ApplyDelta(table, nil, delta)

	if len(next) != 0 {
		t.Errorf("apply_delta([], d) should discard unrecognized operators, got %v", next)
	}
}

func TestApplyDelta_Idempotent(t *testing.T) {
	table := hashing.NewTable(seed)
	current := model.HashModel{stmt(table, "id", "name", "bob", "xsd:string", "", "")}
	delta := model.HashModel{
		stmt(table, "id", "name", "Bob", "xsd:string", "", OperatorReplace),
	}

	once := ApplyDelta(table, current, delta)
	twice := ApplyDelta(table, once, delta)

	if !once.Equal(twice) {
		t.Errorf("apply_delta should be idempotent: once=%v twice=%v", once, twice)
	}
}

// S1: replace updates an existing value.
func TestApplyDelta_ReplaceUpdatesExistingValue(t *testing.T) {
	table := hashing.NewTable(seed)
	current := model.HashModel{stmt(table, "id", "name", "bob", "xsd:string", "", "")}
	delta := model.HashModel{
		stmt(table, "id", "name", "Bob", "xsd:string", "", OperatorReplace),
		stmt(table, "id", "homepage", "https://bob.com", "rdf:namedNode", "", OperatorReplace),
	}

	next := ApplyDelta(table, current, delta)

	if len(next) != 2 {
		t.Fatalf("expected 2 statements after replace, got %d: %v", len(next), next)
	}

	oldValue := table.Ensure("bob")
	for _, s := range next {
		if s.Value == oldValue {
			t.Error("original literal should be absent after replace")
		}
	}
}

// S2: add preserves pre-existing data.
func TestApplyDelta_AddPreservesExisting(t *testing.T) {
	table := hashing.NewTable(seed)
	a := stmt(table, "2", "0", "0", "0", "0", "")
	// Stored statements carry hashing.Zero in the graph slot, the value
	// ApplyDelta gives delta statements once their operator is consumed.
	a.Graph = hashing.Zero
	current := model.HashModel{a}

	delta := model.HashModel{
		stmt(table, "0", "0", "0", "0", "0", OperatorAdd),
		stmt(table, "1", "0", "0", "0", "0", OperatorAdd),
		stmt(table, "2", "0", "0", "0", "0", OperatorAdd),
		stmt(table, "3", "0", "0", "0", "0", OperatorAdd),
	}

	next := ApplyDelta(table, current, delta)

	if len(next) != 4 {
		t.Fatalf("expected 4 statements, got %d: %v", len(next), next)
	}
}

func TestApplyDelta_ReplaceScope(t *testing.T) {
	table := hashing.NewTable(seed)
	current := model.HashModel{
		stmt(table, "s", "p", "old1", "xsd:string", "", ""),
		stmt(table, "s", "p", "old2", "xsd:string", "", ""),
		stmt(table, "s", "other", "kept", "xsd:string", "", ""),
	}
	delta := model.HashModel{
		stmt(table, "s", "p", "new", "xsd:string", "", OperatorReplace),
	}

	next := ApplyDelta(table, current, delta)

	s := table.Ensure("s")
	p := table.Ensure("p")
	count := 0
	for _, st := range next {
		if st.Subject == s && st.Predicate == p {
			count++
			if st.Value != table.Ensure("new") {
				t.Errorf("unexpected surviving (s,p) statement: %v", st)
			}
		}
	}
	if count != 1 {
		t.Errorf("expected exactly 1 statement for (s,p) after replace, got %d", count)
	}
}

func TestApplyDelta_SupplantScope(t *testing.T) {
	table := hashing.NewTable(seed)
	current := model.HashModel{
		stmt(table, "s1", "p1", "v1", "xsd:string", "", ""),
		stmt(table, "s2", "p2", "v2", "xsd:string", "", ""),
	}
	delta := model.HashModel{
		stmt(table, "s3", "p3", "v3", "xsd:string", "", OperatorSupplantLD),
	}

	next := ApplyDelta(table, current, delta)

	if len(next) != 1 {
		t.Fatalf("supplant should leave exactly the delta's own statements, got %v", next)
	}
	if next[0].Subject != table.Ensure("s3") {
		t.Errorf("unexpected surviving statement after supplant: %v", next[0])
	}
}

// S3 (model-level half only; the store-level TRUNCATE has no test in
// this module): invalidate yields an empty model regardless of other
// operators in the same delta.
func TestApplyDelta_InvalidateScope(t *testing.T) {
	table := hashing.NewTable(seed)
	current := model.HashModel{stmt(table, "s", "p", "v", "xsd:string", "", "")}
	delta := model.HashModel{
		stmt(table, "s2", "p2", "v2", "xsd:string", "", OperatorAdd),
		stmt(table, "sp:Variable", "sp:Variable", "sp:Variable", "", "", OperatorInvalidate),
	}

	next := ApplyDelta(table, current, delta)

	if len(next) != 0 {
		t.Errorf("invalidate should empty the model regardless of other operators, got %v", next)
	}
}

func TestApplyDelta_ReplaceTieBreakIsLastSeen(t *testing.T) {
	table := hashing.NewTable(seed)
	delta := model.HashModel{
		stmt(table, "s", "p", "first", "xsd:string", "", OperatorReplace),
		stmt(table, "s", "p", "second", "xsd:string", "", OperatorReplace),
	}

	next := ApplyDelta(table, nil, delta)

	if len(next) != 1 || next[0].Value != table.Ensure("second") {
		t.Errorf("expected last-seen replace to win, got %v", next)
	}
}
