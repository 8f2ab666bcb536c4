package model

import (
	"time"

	"github.com/cuemby/linkproxy/internal/hashing"
)

// Statement is a 6-slot interned quad. Graph carries a delta operator
// IRI during ingestion and is hashing.Zero (or the meta-graph id) in a
// stored model. Equality is elementwise, so Statement is intentionally
// a plain comparable struct rather than a sum type — collapsing it would
// lose the full six-slot identity the delta engine's equality depends
// on (spec §9 design note).
type Statement struct {
	Subject   hashing.Hash128
	Predicate hashing.Hash128
	Value     hashing.Hash128
	Datatype  hashing.Hash128
	Language  hashing.Hash128
	Graph     hashing.Hash128
}

// HashModel is an unordered set of statements describing one document.
// Order is immaterial except where the delta engine specifies it.
type HashModel []Statement

// DocumentSet maps a target document IRI to the delta statements parsed
// for it. Produced by internal/rdf, consumed by internal/importer.
type DocumentSet map[string]HashModel

// CacheControl is the document-level cache policy.
type CacheControl string

const (
	CachePrivate CacheControl = "private"
	CacheNoCache CacheControl = "no-cache"
	CachePublic  CacheControl = "public"
)

// Document is the unit of reset in ingestion and of response in bulk.
type Document struct {
	ID           int64
	IRI          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CacheControl CacheControl
	Language     string
}

// Resource belongs to exactly one document.
type Resource struct {
	ID         int64
	DocumentID int64
	IRI        string
}

// Object is a global, content-addressed (hash, value) row shared across
// documents. H(Value) must equal Hash for every row read from storage.
type Object struct {
	Hash  hashing.Hash128
	Value string
}

// Property joins a resource to a shared object under a
// predicate/datatype/language triple.
type Property struct {
	ID          int64
	ResourceID  int64
	PredicateID int32
	Order       int32
	DatatypeID  int32
	LanguageID  *int32
	ObjectHash  hashing.Hash128
}

// Contains reports whether m already has a statement equal to s under
// full 6-tuple equality.
func (m HashModel) Contains(s Statement) bool {
	for _, existing := range m {
		if existing == s {
			return true
		}
	}
	return false
}

// Equal reports whether m and other contain the same set of statements,
// ignoring order.
func (m HashModel) Equal(other HashModel) bool {
	if len(m) != len(other) {
		return false
	}
	for _, s := range m {
		if !other.Contains(s) {
			return false
		}
	}
	return true
}
