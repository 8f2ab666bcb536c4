package hashing

import (
	"encoding/hex"
	"sync"

	"github.com/spaolacci/murmur3"

	"github.com/cuemby/linkproxy/internal/log"
)

// Hash128 is a 128-bit murmur3 digest, comparable so it can key a map.
type Hash128 struct {
	Hi uint64
	Lo uint64
}

// Zero is the sentinel empty hash, used for the unset graph slot of a
// stored (non-delta) statement.
var Zero Hash128

func (h Hash128) String() string {
	var b [16]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(h.Hi >> (56 - 8*i))
		b[8+i] = byte(h.Lo >> (56 - 8*i))
	}
	return hex.EncodeToString(b[:])
}

// Hash computes the seeded 128-bit murmur3 digest of s. It is pure and
// performs no interning.
func Hash(seed uint32, s string) Hash128 {
	hi, lo := murmur3.Sum128WithSeed([]byte(s), seed)
	return Hash128{Hi: hi, Lo: lo}
}

// Table is the per-context interning lookup table (C1). It is not safe
// to share across requests or pub/sub messages; construct a fresh Table
// for each.
type Table struct {
	seed uint32

	mu      sync.Mutex
	byHash  map[Hash128]string
	byValue map[string]Hash128
}

// NewTable creates an empty Table seeded with the schema's persisted
// seed (internal/store reads this from the config row at startup).
func NewTable(seed uint32) *Table {
	return &Table{
		seed:    seed,
		byHash:  make(map[Hash128]string),
		byValue: make(map[string]Hash128),
	}
}

// Seed returns the seed this table was constructed with.
func (t *Table) Seed() uint32 { return t.seed }

// Hash computes the digest of s under this table's seed without
// inserting it.
func (t *Table) Hash(s string) Hash128 {
	return Hash(t.seed, s)
}

// Ensure idempotently interns s and returns its stable id. A second call
// with the same string returns the same id without mutating the table.
func (t *Table) Ensure(s string) Hash128 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id, ok := t.byValue[s]; ok {
		return id
	}
	id := Hash(t.seed, s)
	t.insertLocked(id, s)
	return id
}

// Insert seeds the table with a known (id, value) pair, as used when
// reloading a document's existing model from storage (spec.md §4.5):
// the id comes from the persisted row, not from re-hashing.
func (t *Table) Insert(id Hash128, s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.insertLocked(id, s)
}

func (t *Table) insertLocked(id Hash128, s string) {
	if existing, ok := t.byHash[id]; ok && existing != s {
		log.Logger.Fatal().
			Str("hash", id.String()).
			Str("existing", existing).
			Str("incoming", s).
			Msg("hash collision in lookup table")
	}
	if existingID, ok := t.byValue[s]; ok && existingID != id {
		log.Logger.Fatal().
			Str("value", s).
			Str("existing_hash", existingID.String()).
			Str("incoming_hash", id.String()).
			Msg("hash collision in lookup table")
	}
	t.byHash[id] = s
	t.byValue[s] = id
}

// ByHash returns the string interned under id, if any.
func (t *Table) ByHash(id Hash128) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.byHash[id]
	return s, ok
}

// ByValue returns the id s was interned under, if any.
func (t *Table) ByValue(s string) (Hash128, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.byValue[s]
	return id, ok
}

// Len returns the number of distinct interned strings.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byValue)
}
