// Package catalog records compiled index and transformer definitions in a
// local SQLite database.
//
// Each definition is stored by name together with its canonical JSON body
// and content fingerprint. Put is idempotent: writing a definition whose
// fingerprint matches the stored one is a no-op, so a deploy step can
// compare a freshly compiled directory against the catalog and push only
// what changed.
//
// Every change is assigned a revision ID and appended to a history table.
// Revision IDs are UUIDv7 by default; tests inject a deterministic
// generator with WithRevisions.
//
// The database runs in WAL mode with a single writer connection. Schema
// changes are tracked with PRAGMA user_version.
package catalog
