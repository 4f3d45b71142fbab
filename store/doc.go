// Package store provides ready-made AccountStore implementations for the
// goCred engine: an in-memory map for tests and single-process deployments,
// and a Redis-backed store for shared deployments.
//
// Both honor the versioned Save contract: a zero-version record is an insert
// that fails on a taken username, a non-zero version is a compare-and-set
// update, so two concurrent read-then-write cycles against the same username
// cannot silently drop a mutation (a lost login-attempt increment included).
package store
