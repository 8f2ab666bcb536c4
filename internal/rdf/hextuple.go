package rdf

import (
	"bufio"
	"bytes"
	"encoding/json"

	"github.com/cuemby/linkproxy/internal/apperr"
	"github.com/cuemby/linkproxy/internal/hashing"
	"github.com/cuemby/linkproxy/internal/model"
)

// decodeHextuples parses one hextuple per non-empty line: a JSON array
// of [subject, predicate, value, datatype, language, graph]. The wire
// format already encodes the object-slot rules of spec.md §4.2, so the
// six fields map onto Statement verbatim once the graph slot is split.
//
// A malformed line aborts the whole payload rather than being discarded
// and logged on its own, per spec.md §4.2's "reject non-conformant
// lines" framing for Decode; this is stricter than §7's per-statement
// discard for runtime processing errors, which applies once a line has
// already parsed.
func decodeHextuples(table *hashing.Table, data []byte) (model.DocumentSet, error) {
	docs := make(model.DocumentSet)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var fields [6]string
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, apperr.Wrap(apperr.KindParserError, "malformed hextuple line", err)
		}

		subject, predicate, value, datatype, language, graph := fields[0], fields[1], fields[2], fields[3], fields[4], fields[5]

		operator, target, err := splitGraph(subject, graph)
		if err != nil {
			return nil, err
		}

		st := model.Statement{
			Subject:   table.Ensure(subject),
			Predicate: table.Ensure(predicate),
			Value:     table.Ensure(value),
			Datatype:  table.Ensure(datatype),
			Language:  table.Ensure(language),
			Graph:     table.Ensure(operator),
		}

		docs[target] = append(docs[target], st)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindParserError, "failed reading hextuple payload", err)
	}

	return docs, nil
}

// IsInvalidateAllSentinel reports whether docs is exactly the one
// hextuple sentinel the pub/sub loop recognizes as invalidate-all:
// a single document with a single statement whose subject, predicate
// and value are all "sp:Variable" and whose operator is the invalidate
// IRI (spec.md §6, §4.6 step 3).
func IsInvalidateAllSentinel(table *hashing.Table, docs model.DocumentSet) bool {
	if len(docs) != 1 {
		return false
	}
	for _, stmts := range docs {
		if len(stmts) != 1 {
			return false
		}
		s := stmts[0]
		variable := table.Ensure("sp:Variable")
		invalidate := table.Ensure(OperatorInvalidateIRI)
		return s.Subject == variable && s.Predicate == variable && s.Value == variable && s.Graph == invalidate
	}
	return false
}

// OperatorInvalidateIRI is the delta operator this package recognizes
// for the invalidate-all sentinel, duplicated from internal/delta to
// avoid an import cycle (rdf is lower-level than delta).
const OperatorInvalidateIRI = "https://ns.ontola.io/invalidate"
