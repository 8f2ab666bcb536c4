// Package importer implements the importer (C6): it takes a parsed
// DocumentSet and, for each target document, resets its resources and
// properties, applies the delta against the existing model, and
// rewrites the object store to reflect the result — all inside one
// database transaction per document so a failure redelivers cleanly.
package importer
