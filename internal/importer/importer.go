package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/cuemby/linkproxy/internal/apperr"
	"github.com/cuemby/linkproxy/internal/delta"
	"github.com/cuemby/linkproxy/internal/hashing"
	"github.com/cuemby/linkproxy/internal/log"
	"github.com/cuemby/linkproxy/internal/metrics"
	"github.com/cuemby/linkproxy/internal/model"
	"github.com/cuemby/linkproxy/internal/store"
)

// giantModelThreshold is the statement count above which a resolved
// model is logged as anomalous but still processed (spec.md §4.3).
const giantModelThreshold = 65000

// Timing reports how long each phase of one process() call took.
type Timing struct {
	Reset     time.Duration
	Apply     time.Duration
	Rewrite   time.Duration
	Total     time.Duration
	Documents int
}

// Importer applies parsed document sets to the object store.
type Importer struct {
	store *store.Store
}

func New(s *store.Store) *Importer {
	return &Importer{store: s}
}

// Process imports every document in docs, each inside its own
// transaction, so a failure on one document never rolls back another
// (spec.md §4.3: "any I/O error aborts the transaction"; the scope of
// that transaction is one document per the reset/rewrite algorithm).
func (im *Importer) Process(ctx context.Context, table *hashing.Table, seed uint32, docs model.DocumentSet) (Timing, error) {
	start := time.Now()
	var total Timing
	total.Documents = len(docs)

	for iri, deltaModel := range docs {
		t, err := im.processOne(ctx, table, seed, iri, deltaModel)
		if err != nil {
			metrics.ImporterTransactionsTotal.WithLabelValues("rolled_back").Inc()
			return total, fmt.Errorf("import %q: %w", iri, err)
		}
		total.Reset += t.Reset
		total.Apply += t.Apply
		total.Rewrite += t.Rewrite
		metrics.ImporterTransactionsTotal.WithLabelValues("committed").Inc()
	}

	total.Total = time.Since(start)
	metrics.ImporterTransactionDuration.Observe(total.Total.Seconds())
	return total, nil
}

// processOne runs the reset -> apply -> rewrite algorithm for a single
// target document inside one database transaction.
func (im *Importer) processOne(ctx context.Context, table *hashing.Table, seed uint32, iri string, deltaModel model.HashModel) (Timing, error) {
	var t Timing
	logger := log.WithDocument(iri)

	tx, err := im.store.DB().BeginTxx(ctx, nil)
	if err != nil {
		return t, apperr.Wrap(apperr.KindCommit, "begin import transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// 1. Reset.
	resetStart := time.Now()
	doc, err := im.store.EnsureDocument(ctx, tx, iri)
	if err != nil {
		return t, apperr.Wrap(apperr.KindCommit, "ensure document", err)
	}
	existing, err := im.store.LoadExistingModel(ctx, tx, table, seed, doc.ID)
	if err != nil {
		return t, apperr.Wrap(apperr.KindCommit, "load existing model", err)
	}
	if err := im.store.DeleteDocumentData(ctx, tx, iri); err != nil {
		return t, apperr.Wrap(apperr.KindCommit, "delete document data", err)
	}
	t.Reset = time.Since(resetStart)

	// 2. Apply delta. Pure, no I/O.
	applyStart := time.Now()
	next := delta.ApplyDelta(table, existing, deltaModel)
	t.Apply = time.Since(applyStart)
	metrics.DeltaApplyDuration.Observe(t.Apply.Seconds())

	if len(next) > giantModelThreshold {
		logger.Warn().Int("statements", len(next)).Msg("resolved model exceeds anomaly threshold")
	}

	// 3 & 4. Rewrite resources and properties.
	rewriteStart := time.Now()
	if len(next) > 0 {
		subjects := distinctSubjects(table, next)
		resourceIDs, err := im.store.RewriteResources(ctx, tx, doc.ID, subjects)
		if err != nil {
			return t, apperr.Wrap(apperr.KindCommit, "rewrite resources", err)
		}
		if err := im.store.RewriteProperties(ctx, tx, table, resourceIDs, next); err != nil {
			return t, apperr.Wrap(apperr.KindCommit, "rewrite properties", err)
		}
	}
	t.Rewrite = time.Since(rewriteStart)

	if err := tx.Commit(); err != nil {
		return t, apperr.Wrap(apperr.KindCommit, "commit import transaction", err)
	}
	committed = true

	logger.Info().
		Int("statements", len(next)).
		Dur("reset", t.Reset).
		Dur("apply", t.Apply).
		Dur("rewrite", t.Rewrite).
		Msg("document imported")
	return t, nil
}

// distinctSubjects returns the set of subject IRIs appearing in m, in
// first-seen order, resolved back from the interned hashes in table.
func distinctSubjects(table *hashing.Table, m model.HashModel) []string {
	seen := make(map[hashing.Hash128]bool)
	var out []string
	for _, st := range m {
		if seen[st.Subject] {
			continue
		}
		seen[st.Subject] = true
		if iri, ok := table.ByHash(st.Subject); ok {
			out = append(out, iri)
		}
	}
	return out
}
