package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/cuemby/linkproxy/internal/hashing"
	"github.com/cuemby/linkproxy/internal/model"
)

// PropertyFilter is the triple-pattern query of spec.md §4.9. Every
// field is optional; an empty string leaves that slot unconstrained.
// SubjectDocumentIRI filters by the document the matched resources
// belong to, not by a single resource — mirroring the reference
// service's TPF/HPF "subject" parameter.
type PropertyFilter struct {
	SubjectDocumentIRI string
	Predicate          string
	Value              string
	Datatype           string
	Language           string
	Page               int64
	PageSize           int64
}

// QueryProperties executes filter against the properties table,
// resolving filter values to dictionary ids first. An unknown
// dictionary value (a predicate/datatype/language/subject-document
// that was never interned) yields an empty result rather than an
// error, per spec.md §4.9.
func (s *Store) QueryProperties(ctx context.Context, q Querier, table *hashing.Table, seed uint32, filter PropertyFilter) (model.HashModel, error) {
	var args []interface{}
	nextArg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	conditions := []string{"p.id > " + nextArg(filter.Page)}

	if filter.SubjectDocumentIRI != "" {
		var resourceIDs []int64
		err := q.SelectContext(ctx, &resourceIDs,
			`SELECT res.id FROM resources res JOIN documents d ON d.id = res.document_id WHERE d.iri = $1`,
			filter.SubjectDocumentIRI)
		if err != nil {
			return nil, fmt.Errorf("resolve subject document: %w", err)
		}
		if len(resourceIDs) == 0 {
			return model.HashModel{}, nil
		}
		conditions = append(conditions, "p.resource_id = ANY("+nextArg(pq.Array(resourceIDs))+")")
	}

	if filter.Predicate != "" {
		id, ok, err := s.lookupDictionaryID(ctx, q, "predicates", filter.Predicate)
		if err != nil {
			return nil, err
		}
		if !ok {
			return model.HashModel{}, nil
		}
		conditions = append(conditions, "p.predicate_id = "+nextArg(id))
	}

	if filter.Datatype != "" {
		id, ok, err := s.lookupDictionaryID(ctx, q, "datatypes", filter.Datatype)
		if err != nil {
			return nil, err
		}
		if !ok {
			return model.HashModel{}, nil
		}
		conditions = append(conditions, "p.datatype_id = "+nextArg(id))
	}

	if filter.Language != "" {
		id, ok, err := s.lookupDictionaryID(ctx, q, "languages", filter.Language)
		if err != nil {
			return nil, err
		}
		if !ok {
			return model.HashModel{}, nil
		}
		conditions = append(conditions, "p.language_id = "+nextArg(id))
	}

	if filter.Value != "" {
		hash := hashing.Hash(seed, filter.Value)
		hi, lo := hiLo(hash)
		conditions = append(conditions, "p.object_hash_hi = "+nextArg(hi)+" AND p.object_hash_lo = "+nextArg(lo))
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 500
	}
	if pageSize > 100000 {
		pageSize = 100000
	}

	query := propertyJoinSelect + "WHERE " + strings.Join(conditions, " AND ") +
		" ORDER BY p.id LIMIT " + nextArg(pageSize)

	rows, err := q.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	defer rows.Close()

	return scanPropertyRows(rows, table, seed)
}

func (s *Store) lookupDictionaryID(ctx context.Context, q Querier, table, value string) (int32, bool, error) {
	selectQuery := fmt.Sprintf(`SELECT id FROM %s WHERE value = $1`, table)
	var id int32
	err := q.GetContext(ctx, &id, selectQuery, value)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup %s %q: %w", table, value, err)
	}
	return id, true, nil
}
