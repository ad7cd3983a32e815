// Package history archives analysis runs and their match records in SQLite.
//
// Every run gets a UUID and a row in runs; the records it produced are
// stored in records in output order. The schema is versioned: a database
// created by an incompatible build is rejected with ErrSchemaMismatch
// rather than migrated.
package history
