package store

import "github.com/cuemby/linkproxy/internal/hashing"

// hiLo/fromHiLo round-trip a Hash128 through the signed BIGINT columns
// Postgres stores it in: the bit pattern is preserved, only the
// interpretation as signed vs. unsigned changes.
func hiLo(h hashing.Hash128) (hi, lo int64) {
	return int64(h.Hi), int64(h.Lo)
}

func fromHiLo(hi, lo int64) hashing.Hash128 {
	return hashing.Hash128{Hi: uint64(hi), Lo: uint64(lo)}
}
