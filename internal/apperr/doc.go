// Package apperr defines the typed error kinds raised by the delta
// engine, importer, bulk orchestrator and pub/sub loop, and maps them to
// HTTP status codes at the edge of internal/httpapi.
package apperr
