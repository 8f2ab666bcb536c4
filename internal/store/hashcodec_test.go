package store

import (
	"testing"

	"github.com/cuemby/linkproxy/internal/hashing"
)

func TestHiLoRoundTrip(t *testing.T) {
	cases := []hashing.Hash128{
		hashing.Zero,
		hashing.Hash(7, "http://example.com/bob"),
		{Hi: ^uint64(0), Lo: ^uint64(0)},
	}
	for _, h := range cases {
		hi, lo := hiLo(h)
		got := fromHiLo(hi, lo)
		if got != h {
			t.Errorf("round trip mismatch: %+v -> (%d,%d) -> %+v", h, hi, lo, got)
		}
	}
}

func TestVerifyObjectIntegrity(t *testing.T) {
	const seed = 11
	id := hashing.Hash(seed, "hello")

	if err := VerifyObjectIntegrity(seed, id, "hello"); err != nil {
		t.Errorf("expected matching value to pass, got %v", err)
	}
	if err := VerifyObjectIntegrity(seed, id, "tampered"); err == nil {
		t.Error("expected mismatched value to fail integrity check")
	}
}
