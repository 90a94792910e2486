package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fnbrainvault/webmark/internal/model"
)

// StateFileName is the snapshot file written inside the output
// directory. The leading dot keeps it out of generated indexes.
const StateFileName = ".webmark_state.json"

// ErrCorruptState is returned by Load when the snapshot exists but
// cannot be read or parsed. Callers are expected to log a warning and
// continue with the fresh state returned alongside it; a bad snapshot
// must never crash the process.
var ErrCorruptState = errors.New("corrupt state snapshot")

// DownloadState is the durable record of crawl progress. It survives
// restarts via the Store and is mutated by the orchestrator after
// every fetch attempt.
//
// Invariants: a URL in Completed is never re-enqueued unless a force
// refresh is requested; a URL may appear in both Failed and RetryQueue
// at the same time, pending a later retry pass; RecursionFailures is a
// disjoint failure class with its own retry budget.
type DownloadState struct {
	// Completed holds URLs whose documents were written successfully.
	Completed map[string]struct{}

	// Failed maps URLs to their terminal failure.
	Failed map[string]model.FailureRecord

	// RetryQueue is the ordered list of URLs awaiting a retry pass.
	RetryQueue []string

	// RecursionFailures maps URLs to depth-limit failures. These are
	// retried with a widened depth allowance, independent of the
	// normal retry budget.
	RecursionFailures map[string]model.ErrorRecord

	// ChildLinks maps completed URLs to the in-scope links discovered
	// on them. The frontier is not persisted, so on resume these are
	// replayed in place of re-fetching a completed page: pages that
	// were discovered but never persisted as completed stay reachable.
	ChildLinks map[string][]string
}

// NewDownloadState creates an empty DownloadState.
func NewDownloadState() *DownloadState {
	return &DownloadState{
		Completed:         make(map[string]struct{}),
		Failed:            make(map[string]model.FailureRecord),
		RetryQueue:        make([]string, 0),
		RecursionFailures: make(map[string]model.ErrorRecord),
		ChildLinks:        make(map[string][]string),
	}
}

// IsCompleted reports whether the URL finished in a previous attempt.
func (s *DownloadState) IsCompleted(url string) bool {
	_, ok := s.Completed[url]
	return ok
}

// MarkCompleted records the URL as done and clears any failure state
// left over from earlier attempts.
func (s *DownloadState) MarkCompleted(url string) {
	s.Completed[url] = struct{}{}
	delete(s.Failed, url)
	delete(s.RecursionFailures, url)
	s.removeFromRetryQueue(url)
}

// RecordFailure records a terminal failure and enqueues the URL for a
// later retry pass. The URL stays in both Failed and RetryQueue until
// a retry succeeds.
func (s *DownloadState) RecordFailure(url string, statusCode int, message string) {
	s.Failed[url] = model.FailureRecord{StatusCode: statusCode, Message: message}
	if !s.inRetryQueue(url) {
		s.RetryQueue = append(s.RetryQueue, url)
	}
}

// RecordRecursionFailure records a depth-limit failure. These live in
// their own map because they are retried under a different regime.
func (s *DownloadState) RecordRecursionFailure(rec model.ErrorRecord) {
	s.RecursionFailures[rec.URL] = rec
}

// RecordChildLinks remembers the in-scope links discovered on a page so
// a later run can traverse past it without a re-fetch.
func (s *DownloadState) RecordChildLinks(url string, links []string) {
	if len(links) == 0 {
		delete(s.ChildLinks, url)
		return
	}
	s.ChildLinks[url] = append([]string(nil), links...)
}

func (s *DownloadState) inRetryQueue(url string) bool {
	for _, u := range s.RetryQueue {
		if u == url {
			return true
		}
	}
	return false
}

func (s *DownloadState) removeFromRetryQueue(url string) {
	for i, u := range s.RetryQueue {
		if u == url {
			s.RetryQueue = append(s.RetryQueue[:i], s.RetryQueue[i+1:]...)
			return
		}
	}
}

// snapshot is the on-disk shape of DownloadState. The completed set is
// stored as a sorted list so snapshots diff cleanly.
type snapshot struct {
	Completed         []string                       `json:"completed_urls"`
	Failed            map[string]model.FailureRecord `json:"failed_downloads"`
	RetryQueue        []string                       `json:"retry_queue"`
	RecursionFailures map[string]model.ErrorRecord   `json:"recursion_failures"`
	ChildLinks        map[string][]string            `json:"child_links,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (s *DownloadState) MarshalJSON() ([]byte, error) {
	completed := make([]string, 0, len(s.Completed))
	for url := range s.Completed {
		completed = append(completed, url)
	}
	sort.Strings(completed)

	return json.Marshal(snapshot{
		Completed:         completed,
		Failed:            s.Failed,
		RetryQueue:        s.RetryQueue,
		RecursionFailures: s.RecursionFailures,
		ChildLinks:        s.ChildLinks,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *DownloadState) UnmarshalJSON(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}

	s.Completed = make(map[string]struct{}, len(snap.Completed))
	for _, url := range snap.Completed {
		s.Completed[url] = struct{}{}
	}
	s.Failed = snap.Failed
	if s.Failed == nil {
		s.Failed = make(map[string]model.FailureRecord)
	}
	s.RetryQueue = snap.RetryQueue
	if s.RetryQueue == nil {
		s.RetryQueue = make([]string, 0)
	}
	s.RecursionFailures = snap.RecursionFailures
	if s.RecursionFailures == nil {
		s.RecursionFailures = make(map[string]model.ErrorRecord)
	}
	s.ChildLinks = snap.ChildLinks
	if s.ChildLinks == nil {
		s.ChildLinks = make(map[string][]string)
	}
	return nil
}

// Store persists DownloadState snapshots under a directory.
type Store struct {
	path string
}

// NewStore creates a Store that keeps its snapshot inside dir.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, StateFileName)}
}

// Path returns the snapshot file path.
func (st *Store) Path() string {
	return st.path
}

// Load reads the persisted state. A missing snapshot yields a fresh
// empty state and nil error. A snapshot that exists but cannot be
// parsed yields a fresh empty state and ErrCorruptState so the caller
// can log the degradation and continue.
func (st *Store) Load() (*DownloadState, error) {
	data, err := os.ReadFile(st.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDownloadState(), nil
		}
		return NewDownloadState(), fmt.Errorf("%w: %v", ErrCorruptState, err)
	}

	state := NewDownloadState()
	if err := json.Unmarshal(data, state); err != nil {
		return NewDownloadState(), fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	return state, nil
}

// Save writes the state atomically: the snapshot goes to a temp file
// in the same directory, is synced, and is renamed over the target.
// A crash mid-write leaves the previous snapshot intact.
func (st *Store) Save(state *DownloadState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(st.path), StateFileName+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to sync state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close state file: %w", err)
	}

	if err := os.Rename(tmpName, st.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace state snapshot: %w", err)
	}
	return nil
}

// Reset deletes the persisted snapshot. Only an explicit reset ever
// removes state.
func (st *Store) Reset() error {
	if err := os.Remove(st.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove state snapshot: %w", err)
	}
	return nil
}
