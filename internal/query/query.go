package query

import (
	"context"
	"fmt"

	"github.com/cuemby/linkproxy/internal/hashing"
	"github.com/cuemby/linkproxy/internal/model"
	"github.com/cuemby/linkproxy/internal/store"
)

// Run executes req against the store and returns the matched statements
// with the Hydra template header prepended, ready for internal/rdf to
// serialize. origin is the request's scheme+host, used to build the
// header's self-describing IRIs.
func Run(ctx context.Context, s *store.Store, table *hashing.Table, seed uint32, origin string, req Request) (model.HashModel, error) {
	filter := store.PropertyFilter{
		SubjectDocumentIRI: req.Subject,
		Predicate:          req.Predicate,
		Value:              req.Value,
		Datatype:           req.Datatype,
		Language:           req.Language,
		Page:               req.Page,
		PageSize:           req.PageSize,
	}

	matches, err := s.QueryProperties(ctx, s.DB(), table, seed, filter)
	if err != nil {
		return nil, fmt.Errorf("run triple-pattern query: %w", err)
	}

	header := Header(table, origin, req)
	out := make(model.HashModel, 0, len(header)+len(matches))
	out = append(out, header...)
	out = append(out, matches...)
	return out, nil
}
