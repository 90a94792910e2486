// Package crawler drives the recursive documentation download.
//
// The traversal is depth-first over an explicit work stack (Frontier)
// rather than native recursion, so depth is a configuration limit and
// the crawl can stop and resume at any URL boundary. The Orchestrator
// owns the run lifecycle: load persisted state, drain the frontier on
// a single polite worker, run the retry passes, and write the final
// reports and index.
package crawler
