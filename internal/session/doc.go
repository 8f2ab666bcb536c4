// Package session verifies the bulk orchestrator's incoming session
// cookie and, when its stored access token has expired, refreshes it
// via OAuth2 — the authentication interface spec.md §1 scopes out of
// the core but the orchestrator still needs a concrete implementation
// of to run end to end.
package session
