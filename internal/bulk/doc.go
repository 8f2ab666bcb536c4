// Package bulk is the bulk orchestrator (C8): given a list of
// requested IRIs it loads what the store already has, authorizes and
// fetches everything else from the backend, persists what comes back,
// and returns one merged RDF document per IRI plus its status-code
// triple.
package bulk
