package store

import (
	"context"
	"fmt"

	"github.com/cuemby/linkproxy/internal/apperr"
	"github.com/cuemby/linkproxy/internal/hashing"
)

// objectChunkSize bounds how many object rows one INSERT statement
// touches, keeping each statement's parameter count well under
// PostgreSQL's 65535 limit (3 params per row here).
const objectChunkSize = 7500

// UpsertObjects writes any object in values that is not already
// present, keyed by hash. Objects are immutable and content-addressed,
// so an existing row is never overwritten.
func (s *Store) UpsertObjects(ctx context.Context, q Querier, values []hashing.Hash128, strings map[hashing.Hash128]string) error {
	for start := 0; start < len(values); start += objectChunkSize {
		end := start + objectChunkSize
		if end > len(values) {
			end = len(values)
		}
		if err := s.upsertObjectChunk(ctx, q, values[start:end], strings); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) upsertObjectChunk(ctx context.Context, q Querier, chunk []hashing.Hash128, strings map[hashing.Hash128]string) error {
	if len(chunk) == 0 {
		return nil
	}

	query := `INSERT INTO objects (hash_hi, hash_lo, value) VALUES `
	args := make([]interface{}, 0, len(chunk)*3)
	for i, id := range chunk {
		if i > 0 {
			query += ", "
		}
		hi, lo := hiLo(id)
		query += fmt.Sprintf("($%d, $%d, $%d)", i*3+1, i*3+2, i*3+3)
		args = append(args, hi, lo, strings[id])
	}
	query += ` ON CONFLICT (hash_hi, hash_lo) DO NOTHING`

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert objects: %w", err)
	}
	return nil
}

// VerifyObjectIntegrity recomputes the hash of value under seed and
// confirms it equals want. Every object read back from storage must
// pass this check (spec.md §8): silent corruption of stored object
// content would otherwise be indistinguishable from a valid write.
func VerifyObjectIntegrity(seed uint32, want hashing.Hash128, value string) error {
	if got := hashing.Hash(seed, value); got != want {
		return apperr.New(apperr.KindUnexpected,
			fmt.Sprintf("object integrity check failed: hash %s does not match stored value", want))
	}
	return nil
}

// LoadObjectValues fetches the string values for a set of object
// hashes, verifying each one's integrity against the store's seed.
func (s *Store) LoadObjectValues(ctx context.Context, q Querier, seed uint32, ids []hashing.Hash128) (map[hashing.Hash128]string, error) {
	out := make(map[hashing.Hash128]string, len(ids))
	for start := 0; start < len(ids); start += objectChunkSize {
		end := start + objectChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		if err := s.loadObjectChunk(ctx, q, seed, ids[start:end], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) loadObjectChunk(ctx context.Context, q Querier, seed uint32, chunk []hashing.Hash128, out map[hashing.Hash128]string) error {
	if len(chunk) == 0 {
		return nil
	}

	query := `SELECT hash_hi, hash_lo, value FROM objects WHERE `
	args := make([]interface{}, 0, len(chunk)*2)
	for i, id := range chunk {
		if i > 0 {
			query += " OR "
		}
		hi, lo := hiLo(id)
		query += fmt.Sprintf("(hash_hi = $%d AND hash_lo = $%d)", i*2+1, i*2+2)
		args = append(args, hi, lo)
	}

	rows, err := q.QueryxContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load objects: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hi, lo int64
		var value string
		if err := rows.Scan(&hi, &lo, &value); err != nil {
			return fmt.Errorf("scan object row: %w", err)
		}
		id := fromHiLo(hi, lo)
		if err := VerifyObjectIntegrity(seed, id, value); err != nil {
			return err
		}
		out[id] = value
	}
	return rows.Err()
}

// CountObjects satisfies internal/metrics.StatsSource.
func (s *Store) CountObjects(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, `SELECT count(*) FROM objects`); err != nil {
		return 0, fmt.Errorf("count objects: %w", err)
	}
	return n, nil
}
