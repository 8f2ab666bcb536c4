// Package log provides structured logging built on zerolog.
//
// A single global Logger is configured once via Init and component-scoped
// child loggers are derived from it with WithComponent, WithDocument and
// WithRequestID, mirroring how the rest of this service threads a logger
// through the bulk orchestrator, importer and ingestion loop.
package log
