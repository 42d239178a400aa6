// Package report persists stage runs and unresolved-dropout warnings in
// SQLite.
//
// Per-field problems in the reconstruction layer are absorbed as data rather
// than raised as errors; this store is their durable destination, so batch
// runs over hundreds of thousands of fields can be audited afterwards. The
// database is operational history, not an archive: schema changes bump the
// version in schema.go and users clear the file to adopt the new schema.
//
// A sidecar flock enforces a single writer per database file.
package report
