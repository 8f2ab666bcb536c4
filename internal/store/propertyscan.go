package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cuemby/linkproxy/internal/hashing"
	"github.com/cuemby/linkproxy/internal/model"
)

// propertyJoinSelect is the resources -> properties -> dictionaries ->
// objects join shared by loadDocumentModel (C3) and QueryProperties
// (C10): both reconstruct statements from the same row shape, just
// under a different WHERE clause.
const propertyJoinSelect = `
	SELECT
		res.iri AS subject_iri,
		pred.hash_hi AS predicate_hi, pred.hash_lo AS predicate_lo, pred.value AS predicate_iri,
		dt.hash_hi AS datatype_hi, dt.hash_lo AS datatype_lo, dt.value AS datatype_iri,
		lang.hash_hi AS language_hi, lang.hash_lo AS language_lo, lang.value AS language_value,
		obj.hash_hi AS object_hash_hi, obj.hash_lo AS object_hash_lo, obj.value AS object_value
	FROM properties p
	JOIN resources res ON res.id = p.resource_id
	JOIN predicates pred ON pred.id = p.predicate_id
	JOIN datatypes dt ON dt.id = p.datatype_id
	LEFT JOIN languages lang ON lang.id = p.language_id
	JOIN objects obj ON obj.hash_hi = p.object_hash_hi AND obj.hash_lo = p.object_hash_lo
`

// scanPropertyRows drains rows (a propertyJoinSelect result set) into a
// HashModel, verifying every object's content-address and interning
// every dictionary string it encounters into table (spec.md §4.5, §8
// property 7).
func scanPropertyRows(rows *sqlx.Rows, table *hashing.Table, seed uint32) (model.HashModel, error) {
	var out model.HashModel
	for rows.Next() {
		var r propertyJoinRow
		if err := rows.StructScan(&r); err != nil {
			return nil, fmt.Errorf("scan property row: %w", err)
		}

		if err := VerifyObjectIntegrity(seed, fromHiLo(r.ObjectHi, r.ObjectLo), r.ObjectValue); err != nil {
			return nil, err
		}

		// A NULL language_id was written for the empty tag, so it reads
		// back as the empty tag's hash, as decoded statements carry it.
		language := ""
		languageID := table.Ensure("")
		if r.LanguageValue.Valid {
			language = r.LanguageValue.String
			languageID = fromHiLo(r.LanguageHi.Int64, r.LanguageLo.Int64)
			table.Insert(languageID, language)
		}

		predicateID := fromHiLo(r.PredicateHi, r.PredicateLo)
		datatypeID := fromHiLo(r.DatatypeHi, r.DatatypeLo)
		objectID := fromHiLo(r.ObjectHi, r.ObjectLo)

		table.Insert(predicateID, r.PredicateIRI)
		table.Insert(datatypeID, r.DatatypeIRI)
		table.Insert(objectID, r.ObjectValue)

		out = append(out, model.Statement{
			Subject:   table.Ensure(r.SubjectIRI),
			Predicate: predicateID,
			Value:     objectID,
			Datatype:  datatypeID,
			Language:  languageID,
			Graph:     hashing.Zero,
		})
	}
	return out, rows.Err()
}
