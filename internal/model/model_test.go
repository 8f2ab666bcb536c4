package model

import (
	"testing"

	"github.com/cuemby/linkproxy/internal/hashing"
)

func h(s string) hashing.Hash128 { return hashing.Hash(1, s) }

func TestHashModelContains(t *testing.T) {
	s := Statement{Subject: h("a"), Predicate: h("b"), Value: h("c")}
	m := HashModel{s}

	if !m.Contains(s) {
		t.Error("expected model to contain its own statement")
	}

	other := Statement{Subject: h("x")}
	if m.Contains(other) {
		t.Error("model should not contain an unrelated statement")
	}
}

func TestHashModelEqualIgnoresOrder(t *testing.T) {
	a := Statement{Subject: h("a")}
	b := Statement{Subject: h("b")}

	m1 := HashModel{a, b}
	m2 := HashModel{b, a}

	if !m1.Equal(m2) {
		t.Error("Equal should ignore statement order")
	}

	m3 := HashModel{a}
	if m1.Equal(m3) {
		t.Error("Equal should require the same statement count")
	}
}
