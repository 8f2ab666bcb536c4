// Package rdf is the parser (C4): it decodes Hextuple-NDJSON and N-Quads
// payloads into a model.DocumentSet, splitting each quad's graph slot
// into a delta operator IRI and a target document IRI.
//
// This is specified in spec.md as a pure codec the orchestrator and
// importer call through; a concrete implementation lives here because a
// complete, runnable service needs one.
package rdf
