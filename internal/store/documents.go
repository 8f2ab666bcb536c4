package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cuemby/linkproxy/internal/apperr"
	"github.com/cuemby/linkproxy/internal/hashing"
	"github.com/cuemby/linkproxy/internal/log"
	"github.com/cuemby/linkproxy/internal/model"
)

// Seed reads the schema's immutable hashing seed from _apex_config,
// generating and persisting one if this is a fresh schema. The seed
// must never change for the lifetime of the schema (spec.md §3).
func (s *Store) Seed(ctx context.Context) (uint32, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM _apex_config WHERE key = 'seed'`)
	if err == nil {
		var seed uint32
		if _, scanErr := fmt.Sscanf(value, "%d", &seed); scanErr != nil {
			return 0, fmt.Errorf("parse stored seed: %w", scanErr)
		}
		return seed, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("read seed: %w", err)
	}

	seed := rand.Uint32()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO _apex_config (key, value) VALUES ('seed', $1) ON CONFLICT (key) DO NOTHING`,
		fmt.Sprint(seed))
	if err != nil {
		return 0, fmt.Errorf("persist new seed: %w", err)
	}
	log.WithComponent("store").Info().Uint32("seed", seed).Msg("generated new schema hashing seed")
	return s.Seed(ctx)
}

type documentRow struct {
	ID           int64     `db:"id"`
	IRI          string    `db:"iri"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	CacheControl string    `db:"cache_control"`
	Language     string    `db:"language"`
}

func (r documentRow) toModel() model.Document {
	return model.Document{
		ID:           r.ID,
		IRI:          r.IRI,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		CacheControl: model.CacheControl(r.CacheControl),
		Language:     r.Language,
	}
}

// EnsureDocument finds the document row for iri, creating it with the
// default Private cache policy if it does not exist yet.
func (s *Store) EnsureDocument(ctx context.Context, q Querier, iri string) (model.Document, error) {
	var row documentRow
	err := q.GetContext(ctx, &row, `SELECT id, iri, created_at, updated_at, cache_control, language FROM documents WHERE iri = $1`, iri)
	if err == nil {
		return row.toModel(), nil
	}
	if err != sql.ErrNoRows {
		return model.Document{}, fmt.Errorf("lookup document %q: %w", iri, err)
	}

	err = q.QueryRowxContext(ctx,
		`INSERT INTO documents (iri, cache_control) VALUES ($1, $2)
		 ON CONFLICT (iri) DO UPDATE SET iri = EXCLUDED.iri
		 RETURNING id, iri, created_at, updated_at, cache_control, language`,
		iri, string(model.CachePrivate)).StructScan(&row)
	if err != nil {
		return model.Document{}, fmt.Errorf("create document %q: %w", iri, err)
	}
	return row.toModel(), nil
}

// DocByIRI loads the document named by iri together with the statements
// belonging to every resource under it, reversing dictionary ids back
// to their interned strings in table. A document with no resources is
// reported as apperr.KindEmptyDocument; an absent document row as
// apperr.KindNotFound.
func (s *Store) DocByIRI(ctx context.Context, q Querier, table *hashing.Table, seed uint32, iri string) (model.Document, model.HashModel, error) {
	var row documentRow
	err := q.GetContext(ctx, &row, `SELECT id, iri, created_at, updated_at, cache_control, language FROM documents WHERE iri = $1`, iri)
	if err == sql.ErrNoRows {
		return model.Document{}, nil, apperr.New(apperr.KindNotFound, "no document for iri "+iri)
	}
	if err != nil {
		return model.Document{}, nil, fmt.Errorf("lookup document %q: %w", iri, err)
	}
	doc := row.toModel()

	stmts, err := s.loadDocumentModel(ctx, q, table, seed, row.ID)
	if err != nil {
		return doc, nil, err
	}
	if len(stmts) == 0 {
		return doc, nil, apperr.New(apperr.KindEmptyDocument, "document has no statements: "+iri)
	}
	return doc, stmts, nil
}

// RandomDocument loads an arbitrary document, used by GET /random. An
// empty table yields apperr.KindNotFound; a document with no statements
// yields apperr.KindEmptyDocument, same as DocByIRI.
func (s *Store) RandomDocument(ctx context.Context, q Querier, table *hashing.Table, seed uint32) (model.Document, model.HashModel, error) {
	var row documentRow
	err := q.GetContext(ctx, &row,
		`SELECT id, iri, created_at, updated_at, cache_control, language FROM documents ORDER BY random() LIMIT 1`)
	if err == sql.ErrNoRows {
		return model.Document{}, nil, apperr.New(apperr.KindNotFound, "no documents in store")
	}
	if err != nil {
		return model.Document{}, nil, fmt.Errorf("select random document: %w", err)
	}
	doc := row.toModel()

	stmts, err := s.loadDocumentModel(ctx, q, table, seed, row.ID)
	if err != nil {
		return doc, nil, err
	}
	if len(stmts) == 0 {
		return doc, nil, apperr.New(apperr.KindEmptyDocument, "document has no statements: "+doc.IRI)
	}
	return doc, stmts, nil
}

// LoadExistingModel loads a document's current statements without the
// EmptyDocument/NotFound classification DocByIRI applies — used by the
// importer's reset step, where an absent or empty model is simply the
// starting point for a delta, not an error (spec.md §4.3 step 1).
func (s *Store) LoadExistingModel(ctx context.Context, q Querier, table *hashing.Table, seed uint32, documentID int64) (model.HashModel, error) {
	return s.loadDocumentModel(ctx, q, table, seed, documentID)
}

type propertyJoinRow struct {
	SubjectIRI    string         `db:"subject_iri"`
	PredicateHi   int64          `db:"predicate_hi"`
	PredicateLo   int64          `db:"predicate_lo"`
	PredicateIRI  string         `db:"predicate_iri"`
	DatatypeHi    int64          `db:"datatype_hi"`
	DatatypeLo    int64          `db:"datatype_lo"`
	DatatypeIRI   string         `db:"datatype_iri"`
	LanguageHi    sql.NullInt64  `db:"language_hi"`
	LanguageLo    sql.NullInt64  `db:"language_lo"`
	LanguageValue sql.NullString `db:"language_value"`
	ObjectHi      int64          `db:"object_hash_hi"`
	ObjectLo      int64          `db:"object_hash_lo"`
	ObjectValue   string         `db:"object_value"`
}

// loadDocumentModel rebuilds a document's HashModel by joining
// resources -> properties -> dictionaries -> objects, interning every
// string it encounters into table under the same ids storage already
// assigned them (spec.md §4.5).
func (s *Store) loadDocumentModel(ctx context.Context, q Querier, table *hashing.Table, seed uint32, documentID int64) (model.HashModel, error) {
	const query = propertyJoinSelect + `
		WHERE res.document_id = $1
		ORDER BY p.id`

	rows, err := q.QueryxContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document model: %w", err)
	}
	defer rows.Close()

	return scanPropertyRows(rows, table, seed)
}

// DeleteDocumentData removes a document's resources and properties,
// cascading, but leaves shared objects untouched (garbage collection of
// objects is out of scope, spec.md §4.1).
func (s *Store) DeleteDocumentData(ctx context.Context, q Querier, iri string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM resources WHERE document_id = (SELECT id FROM documents WHERE iri = $1)`, iri); err != nil {
		return fmt.Errorf("delete document data for %q: %w", iri, err)
	}
	return nil
}

// DeleteAllDocumentData is the invalidate-all primitive: it truncates
// every document, cascading to resources and properties, and leaves
// the object and dictionary tables intact.
func (s *Store) DeleteAllDocumentData(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `TRUNCATE documents CASCADE`); err != nil {
		return fmt.Errorf("truncate documents: %w", err)
	}
	return nil
}

// UpdateCacheControl groups docs by cache-control value and issues one
// UPDATE per group. A failed group is logged and skipped rather than
// aborting the remaining groups (spec.md §9 open question, resolved:
// partial application is preferable to blocking unrelated documents on
// one bad group).
func (s *Store) UpdateCacheControl(ctx context.Context, q Querier, docs map[string]model.CacheControl) error {
	byControl := make(map[model.CacheControl][]string)
	for iri, cc := range docs {
		byControl[cc] = append(byControl[cc], iri)
	}

	for cc, iris := range byControl {
		query, args, err := s.bindIn(`UPDATE documents SET cache_control = ?, updated_at = now() WHERE iri IN (?)`, string(cc), iris)
		if err != nil {
			log.WithComponent("store").Error().Err(err).Msg("build update_cache_control query")
			continue
		}
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			log.WithComponent("store").Error().Err(err).Str("cache_control", string(cc)).Msg("update_cache_control group failed")
			continue
		}
	}
	return nil
}

// bindIn expands a `?`-placeholder query with an IN (?) slice argument
// into the driver's native placeholder form.
func (s *Store) bindIn(query string, args ...interface{}) (string, []interface{}, error) {
	expanded, flatArgs, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, err
	}
	return s.db.Rebind(expanded), flatArgs, nil
}

// CountDocuments satisfies internal/metrics.StatsSource.
func (s *Store) CountDocuments(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, `SELECT count(*) FROM documents`); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}
