package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/cuemby/linkproxy/internal/log"
)

// Querier is the subset of *sqlx.DB and *sqlx.Tx this package needs, so
// every method here can run standalone or inside a caller-owned
// transaction (internal/importer uses the latter).
type Querier interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// Store is the object store's connection pool and schema owner.
type Store struct {
	db *sqlx.DB
}

// Open connects to dsn and ensures the schema exists. Migrations beyond
// this bootstrap DDL are out of this service's scope (spec.md §1); the
// statements below exist so the service is runnable end to end.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to object store: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate object store schema: %w", err)
	}
	return s, nil
}

// DB returns the underlying pool for callers (internal/importer) that
// need to open their own transaction.
func (s *Store) DB() *sqlx.DB { return s.db }

// Close returns the pool's connections.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	log.WithComponent("store").Info().Msg("object store schema ready")
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS _apex_config (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id            BIGSERIAL PRIMARY KEY,
		iri           TEXT NOT NULL UNIQUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		cache_control TEXT NOT NULL DEFAULT 'private',
		language      TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS resources (
		id          BIGSERIAL PRIMARY KEY,
		document_id BIGINT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		iri         TEXT NOT NULL,
		UNIQUE (document_id, iri)
	)`,
	`CREATE TABLE IF NOT EXISTS predicates (
		id      SERIAL PRIMARY KEY,
		hash_hi BIGINT NOT NULL,
		hash_lo BIGINT NOT NULL,
		value   TEXT NOT NULL UNIQUE,
		UNIQUE (hash_hi, hash_lo)
	)`,
	`CREATE TABLE IF NOT EXISTS datatypes (
		id      SERIAL PRIMARY KEY,
		hash_hi BIGINT NOT NULL,
		hash_lo BIGINT NOT NULL,
		value   TEXT NOT NULL UNIQUE,
		UNIQUE (hash_hi, hash_lo)
	)`,
	`CREATE TABLE IF NOT EXISTS languages (
		id      SERIAL PRIMARY KEY,
		hash_hi BIGINT NOT NULL,
		hash_lo BIGINT NOT NULL,
		value   TEXT NOT NULL UNIQUE,
		UNIQUE (hash_hi, hash_lo)
	)`,
	`CREATE TABLE IF NOT EXISTS objects (
		hash_hi BIGINT NOT NULL,
		hash_lo BIGINT NOT NULL,
		value   TEXT NOT NULL,
		PRIMARY KEY (hash_hi, hash_lo)
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id              BIGSERIAL PRIMARY KEY,
		resource_id     BIGINT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
		predicate_id    INTEGER NOT NULL REFERENCES predicates(id),
		"order"         INTEGER NOT NULL DEFAULT 0,
		datatype_id     INTEGER NOT NULL REFERENCES datatypes(id),
		language_id     INTEGER REFERENCES languages(id),
		object_hash_hi  BIGINT NOT NULL,
		object_hash_lo  BIGINT NOT NULL,
		FOREIGN KEY (object_hash_hi, object_hash_lo) REFERENCES objects(hash_hi, hash_lo)
	)`,
	`CREATE INDEX IF NOT EXISTS properties_resource_id_idx ON properties(resource_id)`,
	`CREATE INDEX IF NOT EXISTS properties_id_page_idx ON properties(id)`,
}
