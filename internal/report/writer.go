package report

import (
	"io"

	"github.com/fnbrainvault/webmark/internal/state"
)

// Writer defines the interface for failure report output.
// Implementations render the same failure data in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the failure report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(st *state.DownloadState) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both a JSON artifact and a
// human-readable Markdown file in one pass.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the failure report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(st *state.DownloadState) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(st)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
