// Package metrics registers the Prometheus collectors exposed at /metrics
// and the /health, /ready and /live probe handlers.
//
// Metrics are grouped by the component that owns them: bulk orchestrator,
// importer, delta engine, pub/sub ingestion loop and backend client. All
// are registered once at package init and updated from their owning
// package via the package-level vars, the same pattern the rest of this
// service uses for its Prometheus instrumentation.
package metrics
