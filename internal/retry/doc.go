// Package retry decides what happens to a URL after a fetch attempt:
// process it, try again after a delay, or record it as permanently
// failed. Recursion failures are budgeted separately from network
// failures.
package retry
