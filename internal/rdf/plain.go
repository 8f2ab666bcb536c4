package rdf

import (
	"bufio"
	"bytes"
	"encoding/json"

	"github.com/cuemby/linkproxy/internal/apperr"
	"github.com/cuemby/linkproxy/internal/hashing"
	"github.com/cuemby/linkproxy/internal/model"
)

// DecodePlainHextuples parses one hextuple per line the way
// decodeHextuples does, except the graph field carries no packed
// operator — it is a backend response body describing one document's
// full state (spec.md §4.8), not a delta. The graph field, if present,
// is interned but otherwise ignored by callers, which assign their own
// operator before handing the result to the delta engine.
func DecodePlainHextuples(table *hashing.Table, data []byte) (model.HashModel, error) {
	var out model.HashModel

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var fields [6]string
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, apperr.Wrap(apperr.KindParserError, "malformed hextuple line", err)
		}

		out = append(out, model.Statement{
			Subject:   table.Ensure(fields[0]),
			Predicate: table.Ensure(fields[1]),
			Value:     table.Ensure(fields[2]),
			Datatype:  table.Ensure(fields[3]),
			Language:  table.Ensure(fields[4]),
			Graph:     table.Ensure(fields[5]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindParserError, "failed reading hextuple payload", err)
	}
	return out, nil
}

// WithOperator returns a copy of stmts with every statement's graph
// slot rewritten to operator, so a plain document body can be run
// through the delta engine as a single-operator delta (spec.md §4.8
// merge step uses this with the supplant operator).
func WithOperator(table *hashing.Table, stmts model.HashModel, operator string) model.HashModel {
	operatorID := table.Ensure(operator)
	out := make(model.HashModel, len(stmts))
	for i, s := range stmts {
		s.Graph = operatorID
		out[i] = s
	}
	return out
}
