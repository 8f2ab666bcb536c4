// Package store is the content-addressed object store (C3): documents,
// resources, properties, the shared object table and the predicate/
// datatype/language dictionaries, persisted to PostgreSQL via sqlx and
// lib/pq.
//
// The document, resource, property and dictionary methods accept a
// context.Context and an executor (*sqlx.DB or *sqlx.Tx) so the importer
// can compose several calls into one transaction per spec.md §4.3.
// Seed, DeleteAllDocumentData, LoadDictionaries and the Count methods
// run on the store's own pool.
package store
