package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fnbrainvault/webmark/internal/model"
	"github.com/fnbrainvault/webmark/internal/state"
)

// File names for the JSON failure artifacts written next to the
// downloaded documents.
const (
	FailedDownloadsFile = "failed_downloads.json"
	RecursionErrorsFile = "recursion_errors.json"
)

// JSONWriter outputs the failure report as machine-readable JSON.
// The shape is stable so external tooling can consume it.
type JSONWriter struct {
	baseWriter
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{baseWriter: newBaseWriter(output)}
}

// failedDownloads is the serialized shape of the failure artifact.
type failedDownloads struct {
	Failed     map[string]model.FailureRecord `json:"failed"`
	RetryQueue []string                       `json:"retry_queue"`
}

// Write outputs permanent failures and the retry queue as JSON.
func (w *JSONWriter) Write(st *state.DownloadState) (int, error) {
	payload := failedDownloads{
		Failed:     st.Failed,
		RetryQueue: st.RetryQueue,
	}
	if payload.Failed == nil {
		payload.Failed = map[string]model.FailureRecord{}
	}
	if payload.RetryQueue == nil {
		payload.RetryQueue = []string{}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to marshal failure report: %w", err)
	}
	data = append(data, '\n')
	return w.output.Write(data)
}

// WriteRecursionErrors writes recursion_errors.json into dir when any
// recursion failures exist. A previous recursion_errors.json is removed
// when the current run has none, so stale data never survives.
func WriteRecursionErrors(dir string, st *state.DownloadState) error {
	recPath := filepath.Join(dir, RecursionErrorsFile)
	if len(st.RecursionFailures) == 0 {
		if err := os.Remove(recPath); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	data, err := json.MarshalIndent(st.RecursionFailures, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal recursion errors: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(recPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", RecursionErrorsFile, err)
	}
	return nil
}
