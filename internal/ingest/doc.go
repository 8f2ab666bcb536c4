// Package ingest is the pub/sub loop (C7): a single-threaded
// subscriber that decodes each incoming message into a DocumentSet,
// hands it to the importer, and reports the outcome on a bounded
// reporter channel.
package ingest
