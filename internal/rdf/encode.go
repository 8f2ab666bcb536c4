package rdf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/cuemby/linkproxy/internal/hashing"
	"github.com/cuemby/linkproxy/internal/model"
)

// OutputEncoding selects the wire format Encode writes. It is a
// separate type from Encoding because the service accepts a narrower
// set of formats on ingestion than it serves on output (spec.md §6).
type OutputEncoding int

const (
	OutputHextupleNDJSON OutputEncoding = iota
	OutputNQuads
	OutputNTriples
	OutputTurtle
)

// Encode serializes stmts, resolving each hash through table, in the
// given wire format. Statement order in the output follows stmts'
// order; callers that need stable output should sort stmts first.
func Encode(table *hashing.Table, stmts model.HashModel, enc OutputEncoding) ([]byte, error) {
	switch enc {
	case OutputNQuads:
		return encodeNQuads(table, stmts, true), nil
	case OutputNTriples:
		return encodeNQuads(table, stmts, false), nil
	case OutputTurtle:
		return encodeTurtle(table, stmts), nil
	default:
		return encodeHextupleNDJSON(table, stmts)
	}
}

func resolve(table *hashing.Table, id hashing.Hash128) string {
	if id == hashing.Zero {
		return ""
	}
	s, ok := table.ByHash(id)
	if !ok {
		return ""
	}
	return s
}

func encodeHextupleNDJSON(table *hashing.Table, stmts model.HashModel) ([]byte, error) {
	var buf bytes.Buffer
	for _, s := range stmts {
		fields := [6]string{
			resolve(table, s.Subject),
			resolve(table, s.Predicate),
			resolve(table, s.Value),
			resolve(table, s.Datatype),
			resolve(table, s.Language),
			resolve(table, s.Graph),
		}
		line, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("marshal hextuple: %w", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// termString renders a statement's (value, datatype, language) triple
// as an N-Quads/N-Triples object term, mirroring the object-slot rules
// nquads.go's decoder reverses (spec.md §4.2).
func termString(value, datatype, language string) string {
	switch datatype {
	case DatatypeNamedNode:
		return "<" + value + ">"
	case DatatypeBlankNode:
		return "_:" + value
	case DatatypeLangString:
		return `"` + escapeLiteral(value) + `"@` + language
	case "", DatatypeString:
		return `"` + escapeLiteral(value) + `"`
	default:
		return `"` + escapeLiteral(value) + `"^^<` + datatype + ">"
	}
}

func subjectTerm(iri string) string {
	if strings.HasPrefix(iri, "_:") {
		return iri
	}
	return "<" + iri + ">"
}

func escapeLiteral(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)
	return r.Replace(s)
}

func encodeNQuads(table *hashing.Table, stmts model.HashModel, withGraph bool) []byte {
	var buf bytes.Buffer
	for _, s := range stmts {
		subject := resolve(table, s.Subject)
		predicate := resolve(table, s.Predicate)
		value := resolve(table, s.Value)
		datatype := resolve(table, s.Datatype)
		language := resolve(table, s.Language)

		buf.WriteString(subjectTerm(subject))
		buf.WriteByte(' ')
		buf.WriteString("<" + predicate + ">")
		buf.WriteByte(' ')
		buf.WriteString(termString(value, datatype, language))
		if withGraph {
			if graph := resolve(table, s.Graph); graph != "" {
				buf.WriteByte(' ')
				buf.WriteString("<" + graph + ">")
			}
		}
		buf.WriteString(" .\n")
	}
	return buf.Bytes()
}

// encodeTurtle groups statements by subject so repeated subjects share
// one block, predicate-list style. It does not attempt prefix
// compaction; every term is written out in full.
func encodeTurtle(table *hashing.Table, stmts model.HashModel) []byte {
	order := make([]string, 0)
	bySubject := make(map[string][]model.Statement)
	for _, s := range stmts {
		subject := resolve(table, s.Subject)
		if _, seen := bySubject[subject]; !seen {
			order = append(order, subject)
		}
		bySubject[subject] = append(bySubject[subject], s)
	}
	sort.Strings(order)

	var buf bytes.Buffer
	for _, subject := range order {
		buf.WriteString(subjectTerm(subject))
		group := bySubject[subject]
		for i, s := range group {
			predicate := resolve(table, s.Predicate)
			value := resolve(table, s.Value)
			datatype := resolve(table, s.Datatype)
			language := resolve(table, s.Language)

			buf.WriteString(" <" + predicate + "> ")
			buf.WriteString(termString(value, datatype, language))
			if i == len(group)-1 {
				buf.WriteString(" .\n")
			} else {
				buf.WriteString(" ;\n   ")
			}
		}
	}
	return buf.Bytes()
}
