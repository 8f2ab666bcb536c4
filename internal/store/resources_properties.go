package store

import (
	"context"
	"fmt"

	"github.com/cuemby/linkproxy/internal/hashing"
	"github.com/cuemby/linkproxy/internal/model"
)

// resourceChunkSize and propertyChunkSize bound the row count per
// INSERT the same way objectChunkSize does; the per-row parameter
// counts differ (2 vs. 7) so each gets its own budget under
// PostgreSQL's parameter limit.
const (
	resourceChunkSize = 7500
	propertyChunkSize = 4000
)

// RewriteResources replaces documentID's resource rows with one row per
// distinct subject IRI in subjects, returning the new resource id for
// each. Called after DeleteDocumentData inside the same transaction
// (spec.md §4.3 reset step).
func (s *Store) RewriteResources(ctx context.Context, q Querier, documentID int64, subjects []string) (map[string]int64, error) {
	ids := make(map[string]int64, len(subjects))
	for start := 0; start < len(subjects); start += resourceChunkSize {
		end := start + resourceChunkSize
		if end > len(subjects) {
			end = len(subjects)
		}
		if err := s.insertResourceChunk(ctx, q, documentID, subjects[start:end], ids); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (s *Store) insertResourceChunk(ctx context.Context, q Querier, documentID int64, chunk []string, out map[string]int64) error {
	if len(chunk) == 0 {
		return nil
	}

	query := `INSERT INTO resources (document_id, iri) VALUES `
	args := make([]interface{}, 0, len(chunk)*2)
	for i, iri := range chunk {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("($%d, $%d)", i*2+1, i*2+2)
		args = append(args, documentID, iri)
	}
	query += ` ON CONFLICT (document_id, iri) DO UPDATE SET iri = EXCLUDED.iri RETURNING id, iri`

	rows, err := q.QueryxContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert resources: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var iri string
		if err := rows.Scan(&id, &iri); err != nil {
			return fmt.Errorf("scan inserted resource: %w", err)
		}
		out[iri] = id
	}
	return rows.Err()
}

// propertyInsert is one fully-resolved property row ready to write.
type propertyInsert struct {
	ResourceID int64
	Predicate  hashing.Hash128
	Order      int32
	Datatype   hashing.Hash128
	Language   hashing.Hash128
	HasLang    bool
	Object     hashing.Hash128
}

// RewriteProperties interns every predicate/datatype/language in stmts
// into their dictionaries, upserts the referenced objects, and inserts
// one property row per statement. resourceIDs maps a statement's
// subject IRI to its resource id; table must already have every
// string in stmts interned (the importer ensures this).
func (s *Store) RewriteProperties(ctx context.Context, q Querier, table *hashing.Table, resourceIDs map[string]int64, stmts model.HashModel) error {
	inserts := make([]propertyInsert, 0, len(stmts))
	objectValues := make(map[hashing.Hash128]string)

	order := make(map[int64]int32)
	for _, st := range stmts {
		subjectIRI, ok := table.ByHash(st.Subject)
		if !ok {
			return fmt.Errorf("subject hash %s not interned", st.Subject)
		}
		resourceID, ok := resourceIDs[subjectIRI]
		if !ok {
			return fmt.Errorf("no resource row for subject %q", subjectIRI)
		}

		objectValue, _ := table.ByHash(st.Value)
		objectValues[st.Value] = objectValue

		languageTag, hasLang := table.ByHash(st.Language)
		hasLang = hasLang && languageTag != ""

		ins := propertyInsert{
			ResourceID: resourceID,
			Predicate:  st.Predicate,
			Order:      order[resourceID],
			Datatype:   st.Datatype,
			Object:     st.Value,
			HasLang:    hasLang,
		}
		if hasLang {
			ins.Language = st.Language
		}
		order[resourceID]++
		inserts = append(inserts, ins)
	}

	objectIDs := make([]hashing.Hash128, 0, len(objectValues))
	for id := range objectValues {
		objectIDs = append(objectIDs, id)
	}
	if err := s.UpsertObjects(ctx, q, objectIDs, objectValues); err != nil {
		return err
	}

	for start := 0; start < len(inserts); start += propertyChunkSize {
		end := start + propertyChunkSize
		if end > len(inserts) {
			end = len(inserts)
		}
		if err := s.insertPropertyChunk(ctx, q, table, inserts[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) insertPropertyChunk(ctx context.Context, q Querier, table *hashing.Table, chunk []propertyInsert) error {
	if len(chunk) == 0 {
		return nil
	}

	query := `INSERT INTO properties (resource_id, predicate_id, "order", datatype_id, language_id, object_hash_hi, object_hash_lo) VALUES `
	args := make([]interface{}, 0, len(chunk)*7)
	for i, p := range chunk {
		if i > 0 {
			query += ", "
		}
		base := i * 7
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7)

		predicateIRI, _ := table.ByHash(p.Predicate)
		predicateID, err := s.EnsurePredicateID(ctx, q, p.Predicate, predicateIRI)
		if err != nil {
			return err
		}
		datatypeIRI, _ := table.ByHash(p.Datatype)
		datatypeID, err := s.EnsureDatatypeID(ctx, q, p.Datatype, datatypeIRI)
		if err != nil {
			return err
		}

		var languageID interface{}
		if p.HasLang {
			languageTag, _ := table.ByHash(p.Language)
			id, err := s.EnsureLanguageID(ctx, q, p.Language, languageTag)
			if err != nil {
				return err
			}
			languageID = id
		}

		objHi, objLo := hiLo(p.Object)
		args = append(args, p.ResourceID, predicateID, p.Order, datatypeID, languageID, objHi, objLo)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert properties: %w", err)
	}
	return nil
}
