// Package state persists crawl progress across runs.
//
// The snapshot is a single JSON file written atomically (temp file +
// rename) so that a crash mid-write never corrupts the last good
// snapshot. The snapshot is the authoritative record for resuming a
// run; the advisory reports and the status database are derived from
// it and are never read back.
package state
