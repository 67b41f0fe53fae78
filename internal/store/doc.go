// Package store provides the structured-record persistence collaborator
// used by handler callbacks. Records are schemaless JSON documents
// grouped by record type, backed by SQLite, with an optional circuit
// breaker around every operation.
package store
