package query

import (
	"strings"
	"testing"

	"github.com/cuemby/linkproxy/internal/hashing"
)

func TestCollectionIRIUnfiltered(t *testing.T) {
	got := CollectionIRI("https://example.com", Request{})
	if got != "https://example.com/tpf" {
		t.Errorf("got %q", got)
	}
}

func TestCollectionIRIWithFilters(t *testing.T) {
	got := CollectionIRI("https://example.com", Request{Subject: "https://example.com/doc"})
	if !strings.HasPrefix(got, "https://example.com/tpf?") {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(got, "subject=") {
		t.Errorf("expected subject param, got %q", got)
	}
}

func TestHeaderIncludesTemplateMappings(t *testing.T) {
	table := hashing.NewTable(7)
	stmts := Header(table, "https://example.com", Request{})

	if len(stmts) != 12 {
		t.Fatalf("expected 12 header statements (2 dataset + 10 template), got %d", len(stmts))
	}

	templateIRI := table.Ensure("https://example.com/tpf#template")
	mappingCount := 0
	for _, s := range stmts {
		if s.Subject == templateIRI && s.Predicate == table.Ensure(hydraMapping) {
			mappingCount++
		}
	}
	if mappingCount != 3 {
		t.Errorf("expected 3 hydra:mapping statements off the template IRI, got %d", mappingCount)
	}
}
