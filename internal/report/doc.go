// Package report renders download failure reports.
//
// Two formats share one Writer interface: JSON artifacts for tooling
// (failed_downloads.json, recursion_errors.json) and a Markdown report
// for humans (failures.md). Both are derived from the persisted
// download state, never from in-memory run data alone.
package report
