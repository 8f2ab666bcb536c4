// Package model holds the hash-interned quad model: Statement, the
// document/resource/object shapes the object store persists, and the
// DocumentSet the parser produces.
package model
