// Package sqlite provides a SQLite-backed world-state store.
//
// One database can hold several worlds keyed by world id (the save-path
// identity). Buckets and the clock are replaced on every save; history rows
// are append-only and keyed by their position in the history.
package sqlite
