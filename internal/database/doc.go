// Package database provides SQLite-backed storage of per-page download
// status. It is advisory metadata for inspection and tooling; the JSON
// state file remains the source of truth for resuming a run.
package database
