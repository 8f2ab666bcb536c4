package delta

import (
	"github.com/cuemby/linkproxy/internal/hashing"
	"github.com/cuemby/linkproxy/internal/log"
	"github.com/cuemby/linkproxy/internal/model"
)

// Delta operator IRIs, the wire constants of spec.md §6.
const (
	OperatorAdd        = "http://purl.org/linked-delta/add"
	OperatorReplace    = "http://purl.org/linked-delta/replace"
	OperatorSupplantLD = "http://purl.org/linked-delta/supplant"
	OperatorSupplantLL = "http://purl.org/link-lib/supplant"
	OperatorInvalidate = "https://ns.ontola.io/invalidate"
)

// Operator is the processor a delta statement's graph slot dispatches to.
type Operator int

const (
	OpUnknown Operator = iota
	OpAdd
	OpReplace
	OpSupplant
	OpInvalidate
)

// operatorHashes caches the seeded hash of each recognized operator IRI
// so Classify does not re-hash them on every statement.
type operatorHashes struct {
	add, replace, supplantLD, supplantLL, invalidate hashing.Hash128
}

func hashOperators(table *hashing.Table) operatorHashes {
	return operatorHashes{
		add:        table.Hash(OperatorAdd),
		replace:    table.Hash(OperatorReplace),
		supplantLD: table.Hash(OperatorSupplantLD),
		supplantLL: table.Hash(OperatorSupplantLL),
		invalidate: table.Hash(OperatorInvalidate),
	}
}

func (o operatorHashes) classify(graph hashing.Hash128) Operator {
	switch graph {
	case o.add:
		return OpAdd
	case o.replace:
		return OpReplace
	case o.supplantLD, o.supplantLL:
		return OpSupplant
	case o.invalidate:
		return OpInvalidate
	default:
		return OpUnknown
	}
}

// ApplyDelta is the pure function of spec.md §4.4. table supplies the
// seed used to recognize operator IRIs in delta's graph slots; it is not
// mutated. The returned model never carries an operator in its graph
// slot — add/replace/supplant all rewrite it to hashing.Zero.
func ApplyDelta(table *hashing.Table, current, delta model.HashModel) model.HashModel {
	ops := hashOperators(table)

	var addable, replaceable model.HashModel
	wipeAll := false
	invalidateAll := false

	for _, s := range delta {
		switch ops.classify(s.Graph) {
		case OpAdd:
			addable = append(addable, withEmptyGraph(s))
		case OpReplace:
			replaceable = append(replaceable, withEmptyGraph(s))
		case OpSupplant:
			wipeAll = true
			addable = append(addable, withEmptyGraph(s))
		case OpInvalidate:
			invalidateAll = true
		default:
			log.WithComponent("delta").Warn().
				Str("graph_hash", s.Graph.String()).
				Msg("discarding delta statement with unrecognized operator")
		}
	}

	if invalidateAll {
		return model.HashModel{}
	}

	next := current
	if wipeAll {
		next = model.HashModel{}
	} else {
		next = append(model.HashModel{}, current...)
	}

	for _, s := range replaceable {
		next = dropMatching(next, s.Subject, s.Predicate)
		next = append(next, s)
	}

	for _, s := range addable {
		if !next.Contains(s) {
			next = append(next, s)
		}
	}

	return next
}

func withEmptyGraph(s model.Statement) model.Statement {
	s.Graph = hashing.Zero
	return s
}

func dropMatching(m model.HashModel, subject, predicate hashing.Hash128) model.HashModel {
	out := make(model.HashModel, 0, len(m))
	for _, s := range m {
		if s.Subject == subject && s.Predicate == predicate {
			continue
		}
		out = append(out, s)
	}
	return out
}
