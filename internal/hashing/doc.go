// Package hashing implements the interning lookup table: a bijection
// between arbitrary strings and their 128-bit seeded murmur3 hash.
//
// A Table is owned by a single request or pub/sub message context and is
// never shared across tasks; see internal/store for the per-schema seed
// this package's hashes must be constructed with.
package hashing
