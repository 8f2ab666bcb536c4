package ingest

import (
	"github.com/cuemby/linkproxy/internal/apperr"
	"github.com/cuemby/linkproxy/internal/metrics"
)

// reporterCapacity bounds the reporter channel (spec.md §4.6: "capacity
// ≈ 100"), the same buffered-channel backpressure the teacher's event
// broker uses for its publish channel.
const reporterCapacity = 100

// Result is what the loop reports for one handled message.
type Result struct {
	Timing Timing
	Kind   apperr.Kind // zero value on success
}

// Reporter is a bounded, non-blocking sink for per-message results. A
// full channel means nobody is draining it; the report is dropped and
// counted rather than blocking ingestion (spec.md §4.6 backpressure).
type Reporter struct {
	ch chan Result
}

func NewReporter() *Reporter {
	return &Reporter{ch: make(chan Result, reporterCapacity)}
}

// Report is non-blocking: like the event broker's Publish, it never
// waits for a slow consumer.
func (r *Reporter) Report(res Result) {
	select {
	case r.ch <- res:
	default:
		metrics.IngestReporterDroppedTotal.Inc()
	}
}

// Results exposes the channel for a consumer to range over.
func (r *Reporter) Results() <-chan Result {
	return r.ch
}

func (r *Reporter) Close() {
	close(r.ch)
}
