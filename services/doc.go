// Package services provides persistence backends for the review ledger.
//
// The ledger itself is an in-memory single-writer state machine; an archive
// gives it durability. Archive writes happen synchronously inside the
// ledger's commit boundary, and on startup the ledger rebuilds its full
// state from the archive's id-ordered record tables.
//
// Two implementations are provided: PostgresArchive for deployments and
// MemoryArchive for tests and ephemeral runs.
package services
