// Package repositories implements persistence for identity accounts and user documents.
//
// Key Implementations:
//   - [AccountRepository] : SQLite accounts for the local identity provider, with email and provider lookups
//   - [DocumentRepository] : SQLite keyed JSON documents holding each user's {liked, schedules} record
//   - [BoltDocumentStore] : the same document contract on a bbolt file, selected with documents.driver = "bolt"
//
// Accounts support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
// Sequence numbers provide stable, human-readable ordering (account #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
//
// Document stores return a [models.Snapshot] with Exists=false for a missing path rather than an error,
// mirroring a realtime database read.
package repositories
