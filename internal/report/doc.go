// Package report persists validation and insight runs in SQLite. The store
// keeps full report payloads as JSON columns next to the queryable scalars,
// so list views stay cheap and detail views lose nothing.
package report
