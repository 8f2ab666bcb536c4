package store

import (
	"context"
	"fmt"

	"github.com/cuemby/linkproxy/internal/hashing"
)

// ensureDictionaryID returns the integer id for value under table,
// inserting it first if this is the first time it has been seen. table
// must be one of "predicates", "datatypes", "languages" — all three
// share this shape, grounded on the object store's dictionary design
// (spec.md §3).
func ensureDictionaryID(ctx context.Context, q Querier, table string, id hashing.Hash128, value string) (int32, error) {
	hi, lo := hiLo(id)

	selectQuery := fmt.Sprintf(`SELECT id FROM %s WHERE hash_hi = $1 AND hash_lo = $2`, table)
	var existingID int32
	err := q.GetContext(ctx, &existingID, selectQuery, hi, lo)
	if err == nil {
		return existingID, nil
	}

	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (hash_hi, hash_lo, value) VALUES ($1, $2, $3)
		ON CONFLICT (hash_hi, hash_lo) DO UPDATE SET hash_hi = EXCLUDED.hash_hi
		RETURNING id`, table)
	var newID int32
	if err := q.GetContext(ctx, &newID, insertQuery, hi, lo, value); err != nil {
		return 0, fmt.Errorf("insert %s dictionary row: %w", table, err)
	}
	return newID, nil
}

// EnsurePredicateID interns a predicate IRI into the predicates
// dictionary, returning its small integer id.
func (s *Store) EnsurePredicateID(ctx context.Context, q Querier, id hashing.Hash128, iri string) (int32, error) {
	return ensureDictionaryID(ctx, q, "predicates", id, iri)
}

// EnsureDatatypeID interns a datatype IRI into the datatypes dictionary.
func (s *Store) EnsureDatatypeID(ctx context.Context, q Querier, id hashing.Hash128, iri string) (int32, error) {
	return ensureDictionaryID(ctx, q, "datatypes", id, iri)
}

// EnsureLanguageID interns a BCP47 language tag into the languages
// dictionary. The empty tag is never interned; callers must check for
// it and leave the property's language_id NULL instead.
func (s *Store) EnsureLanguageID(ctx context.Context, q Querier, id hashing.Hash128, tag string) (int32, error) {
	return ensureDictionaryID(ctx, q, "languages", id, tag)
}

// LoadDictionaries seeds table with every predicate, datatype and
// language value already known to the object store, so that a fresh
// hashing.Table reloaded from storage resolves the same ids the stored
// rows were written under (spec.md §4.5).
func (s *Store) LoadDictionaries(ctx context.Context, table *hashing.Table) error {
	for _, name := range []string{"predicates", "datatypes", "languages"} {
		rows, err := s.db.QueryxContext(ctx, fmt.Sprintf(`SELECT hash_hi, hash_lo, value FROM %s`, name))
		if err != nil {
			return fmt.Errorf("load %s dictionary: %w", name, err)
		}
		for rows.Next() {
			var hi, lo int64
			var value string
			if err := rows.Scan(&hi, &lo, &value); err != nil {
				rows.Close()
				return fmt.Errorf("scan %s dictionary row: %w", name, err)
			}
			table.Insert(fromHiLo(hi, lo), value)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()
	}
	return nil
}
