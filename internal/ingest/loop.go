package ingest

import (
	"context"
	"time"

	"github.com/cuemby/linkproxy/internal/apperr"
	"github.com/cuemby/linkproxy/internal/hashing"
	"github.com/cuemby/linkproxy/internal/importer"
	"github.com/cuemby/linkproxy/internal/log"
	"github.com/cuemby/linkproxy/internal/metrics"
	"github.com/cuemby/linkproxy/internal/rdf"
	"github.com/cuemby/linkproxy/internal/store"
)

// Timing breaks down how long one message spent in each phase of the
// loop: waiting on the subscriber, parsing the payload, applying the
// delta, and the database work the importer did.
type Timing struct {
	Poll  time.Duration
	Parse time.Duration
	Apply time.Duration
	DB    time.Duration
}

// Loop is the single-threaded pub/sub ingestion loop (C7).
type Loop struct {
	source   MessageSource
	store    *store.Store
	importer *importer.Importer
	seed     uint32
	reporter *Reporter
	encoding rdf.Encoding
}

func NewLoop(source MessageSource, st *store.Store, imp *importer.Importer, seed uint32, reporter *Reporter) *Loop {
	return &Loop{
		source:   source,
		store:    st,
		importer: imp,
		seed:     seed,
		reporter: reporter,
		encoding: rdf.EncodingHextupleNDJSON,
	}
}

// Run blocks, processing messages until ctx is cancelled. It is
// cooperative: each message is fully handled before the next is
// polled, and the loop checks ctx between messages.
func (l *Loop) Run(ctx context.Context) {
	logger := log.WithComponent("ingest")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pollStart := time.Now()
		payload, err := l.source.ReceiveMessage(ctx)
		pollDur := time.Since(pollStart)
		metrics.IngestPollDuration.Observe(pollDur.Seconds())

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if apperr.Droppable(err) {
				logger.Warn().Err(err).Msg("pub/sub connection error, reconnecting")
				if rerr := l.source.Reconnect(ctx); rerr != nil {
					logger.Error().Err(rerr).Msg("reconnect failed")
				}
				continue
			}
			logger.Error().Err(err).Msg("unrecognized pub/sub error, continuing")
			continue
		}

		l.handleMessage(ctx, payload, pollDur)
	}
}

func (l *Loop) handleMessage(ctx context.Context, payload []byte, pollDur time.Duration) {
	logger := log.WithComponent("ingest")

	// A fresh table per message, per C1's per-message ownership rule;
	// interning is seed-deterministic so this costs nothing beyond the
	// message's own statements.
	table := hashing.NewTable(l.seed)

	parseStart := time.Now()
	docs, err := rdf.Decode(table, payload, l.encoding)
	parseDur := time.Since(parseStart)

	if err != nil {
		logger.Warn().Err(err).Msg("failed to decode pub/sub message")
		metrics.IngestMessagesTotal.WithLabelValues("error").Inc()
		l.reporter.Report(Result{Kind: apperr.KindOf(err)})
		return
	}

	if rdf.IsInvalidateAllSentinel(table, docs) {
		dbStart := time.Now()
		err := l.store.DeleteAllDocumentData(ctx)
		dbDur := time.Since(dbStart)
		if err != nil {
			logger.Error().Err(err).Msg("invalidate-all failed")
			metrics.IngestMessagesTotal.WithLabelValues("error").Inc()
			l.reporter.Report(Result{Kind: apperr.KindOf(err)})
			return
		}
		metrics.IngestMessagesTotal.WithLabelValues("invalidate_all").Inc()
		l.reporter.Report(Result{Timing: Timing{Poll: pollDur, Parse: parseDur, DB: dbDur}})
		return
	}

	applyStart := time.Now()
	t, err := l.importer.Process(ctx, table, l.seed, docs)
	applyDur := time.Since(applyStart)
	metrics.IngestApplyDuration.Observe(applyDur.Seconds())

	if err != nil {
		logger.Error().Err(err).Msg("importer failed to process message")
		metrics.IngestMessagesTotal.WithLabelValues("error").Inc()
		l.reporter.Report(Result{Kind: apperr.KindOf(err)})
		return
	}

	metrics.IngestMessagesTotal.WithLabelValues("applied").Inc()
	l.reporter.Report(Result{Timing: Timing{
		Poll:  pollDur,
		Parse: parseDur,
		Apply: applyDur,
		DB:    t.Reset + t.Rewrite,
	}})
}
