// Package history records capture attempts in a SQLite database.
//
// Every capture gets a Record that the pipeline advances through the
// downloading, extracting, and transcribing statuses before it ends as
// completed, failed, or review. The CLI reads the same table for the
// history and status commands. The schema is versioned; opening a database
// written by a different version returns ErrSchemaMismatch.
package history
