package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fnbrainvault/webmark/internal/config"
	"github.com/fnbrainvault/webmark/internal/log"
	"github.com/fnbrainvault/webmark/internal/model"
	"github.com/fnbrainvault/webmark/internal/state"
)

// docPage renders a minimal documentation page with the given links.
func docPage(title string, links ...string) string {
	var sb strings.Builder
	sb.WriteString("<html><head><title>" + title + "</title></head><body><main>")
	sb.WriteString("<h1>" + title + "</h1><p>Content for " + title + ".</p>")
	for _, link := range links {
		sb.WriteString(fmt.Sprintf(`<a href="%s">%s</a>`, link, link))
	}
	sb.WriteString("</main></body></html>")
	return sb.String()
}

// countingMux wraps a mux and counts requests per path.
type countingMux struct {
	mu     sync.Mutex
	counts map[string]int
	mux    *http.ServeMux
}

func newCountingMux() *countingMux {
	return &countingMux{counts: make(map[string]int), mux: http.NewServeMux()}
}

func (c *countingMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	c.counts[r.URL.Path]++
	c.mu.Unlock()
	c.mux.ServeHTTP(w, r)
}

func (c *countingMux) count(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[path]
}

// testConfig returns a config tuned for tests: no real delays, state
// saved after every page.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.OutputDir = t.TempDir()
	cfg.RateLimitDelay = 0
	cfg.RetryBaseDelay = time.Millisecond
	cfg.SaveInterval = 1
	return cfg
}

// newTestOrchestrator builds an orchestrator that never sleeps and
// logs nowhere.
func newTestOrchestrator(cfg *config.Config, opts ...Option) *Orchestrator {
	base := []Option{
		WithLogger(log.NewLogger(io.Discard, false)),
		WithSleepFunc(func(ctx context.Context, _ time.Duration) error { return ctx.Err() }),
	}
	return New(cfg, append(base, opts...)...)
}

// TestRunDownloadsSite verifies the end-to-end crawl: traversal within
// scope, cycle termination, document and report output.
func TestRunDownloadsSite(t *testing.T) {
	t.Parallel()

	cm := newCountingMux()
	cm.mux.HandleFunc("/docs/start", func(w http.ResponseWriter, _ *http.Request) {
		// Cycle back to start plus an out-of-scope link.
		fmt.Fprint(w, docPage("Start", "/docs/a", "/docs/b", "/blog/post"))
	})
	cm.mux.HandleFunc("/docs/a", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, docPage("Page A", "/docs/start"))
	})
	cm.mux.HandleFunc("/docs/b", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, docPage("Page B"))
	})
	cm.mux.HandleFunc("/blog/post", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, docPage("Blog"))
	})
	srv := httptest.NewServer(cm)
	defer srv.Close()

	cfg := testConfig(t)
	orch := newTestOrchestrator(cfg)

	summary := orch.Run(context.Background(), srv.URL+"/docs/start")
	if summary.Err != nil {
		t.Fatalf("run failed: %v", summary.Err)
	}
	if summary.Processed != 3 {
		t.Errorf("expected 3 pages processed, got %d", summary.Processed)
	}
	if summary.Failed != 0 {
		t.Errorf("expected no failures, got %d", summary.Failed)
	}

	// Cycle terminated: each page fetched exactly once.
	for _, path := range []string{"/docs/start", "/docs/a", "/docs/b"} {
		if got := cm.count(path); got != 1 {
			t.Errorf("expected %s fetched once, got %d", path, got)
		}
	}
	if got := cm.count("/blog/post"); got != 0 {
		t.Errorf("expected out-of-scope page untouched, got %d fetches", got)
	}

	// Documents on disk mirror the URL structure.
	for _, rel := range []string{"docs/start.md", "docs/a.md", "docs/b.md"} {
		if _, err := os.Stat(filepath.Join(cfg.OutputDir, filepath.FromSlash(rel))); err != nil {
			t.Errorf("expected document %s: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "INDEX.md")); err != nil {
		t.Errorf("expected index: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "failed_downloads.json")); err != nil {
		t.Errorf("expected failure artifact: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "failures.md")); err != nil {
		t.Errorf("expected failure report: %v", err)
	}
}

// TestRunRecordsPermanentFailures verifies 404s are recorded without
// stopping the crawl of sibling pages.
func TestRunRecordsPermanentFailures(t *testing.T) {
	t.Parallel()

	cm := newCountingMux()
	cm.mux.HandleFunc("/docs/start", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, docPage("Start", "/docs/missing", "/docs/ok"))
	})
	cm.mux.HandleFunc("/docs/ok", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, docPage("OK"))
	})
	srv := httptest.NewServer(cm)
	defer srv.Close()

	cfg := testConfig(t)
	orch := newTestOrchestrator(cfg)

	summary := orch.Run(context.Background(), srv.URL+"/docs/start")
	if summary.Err != nil {
		t.Fatalf("run failed: %v", summary.Err)
	}
	if summary.Processed != 2 {
		t.Errorf("expected start and ok processed, got %d", summary.Processed)
	}
	if summary.Failed != 1 {
		t.Errorf("expected one failure, got %d", summary.Failed)
	}

	st, err := state.NewStore(cfg.OutputDir).Load()
	if err != nil {
		t.Fatalf("state load failed: %v", err)
	}
	rec, ok := st.Failed[srv.URL+"/docs/missing"]
	if !ok {
		t.Fatal("expected missing page in failed state")
	}
	if rec.StatusCode != 404 || rec.Message != "http_404" {
		t.Errorf("unexpected failure record %+v", rec)
	}

	// 404 never retries inside the fetch loop, and a failure from this
	// run is not re-attempted by the end-of-run retry pass.
	if got := cm.count("/docs/missing"); got != 1 {
		t.Errorf("expected 1 fetch of missing page, got %d", got)
	}

	if len(st.RetryQueue) != 1 || st.RetryQueue[0] != srv.URL+"/docs/missing" {
		t.Errorf("expected missing page queued for a later retry, got %v", st.RetryQueue)
	}
}

// TestRunExhaustsRetries verifies a persistently unavailable page is
// fetched exactly once plus the retry budget, then recorded as failed
// and left alone for the rest of the run.
func TestRunExhaustsRetries(t *testing.T) {
	t.Parallel()

	cm := newCountingMux()
	cm.mux.HandleFunc("/docs/start", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, docPage("Start", "/docs/down"))
	})
	cm.mux.HandleFunc("/docs/down", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(cm)
	defer srv.Close()

	cfg := testConfig(t)
	summary := newTestOrchestrator(cfg).Run(context.Background(), srv.URL+"/docs/start")
	if summary.Err != nil {
		t.Fatalf("run failed: %v", summary.Err)
	}
	if summary.Failed != 1 {
		t.Errorf("expected one failure, got %d", summary.Failed)
	}

	if got, want := cm.count("/docs/down"), cfg.MaxRetries+1; got != want {
		t.Errorf("expected %d fetches of unavailable page, got %d", want, got)
	}

	st, err := state.NewStore(cfg.OutputDir).Load()
	if err != nil {
		t.Fatalf("state load failed: %v", err)
	}
	rec, ok := st.Failed[srv.URL+"/docs/down"]
	if !ok {
		t.Fatal("expected unavailable page in failed state")
	}
	if rec.StatusCode != 503 {
		t.Errorf("expected status 503 recorded, got %d", rec.StatusCode)
	}
}

// TestRunRetriesInheritedFailures verifies a failure persisted by an
// earlier run is re-attempted by the next run's retry pass.
func TestRunRetriesInheritedFailures(t *testing.T) {
	t.Parallel()

	cm := newCountingMux()
	var mu sync.Mutex
	recovered := false
	cm.mux.HandleFunc("/docs/start", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, docPage("Start", "/docs/missing"))
	})
	cm.mux.HandleFunc("/docs/missing", func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		ok := recovered
		mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, docPage("Missing"))
	})
	srv := httptest.NewServer(cm)
	defer srv.Close()

	cfg := testConfig(t)
	seed := srv.URL + "/docs/start"

	first := newTestOrchestrator(cfg).Run(context.Background(), seed)
	if first.Failed != 1 {
		t.Fatalf("expected first run to record the failure, got %+v", first)
	}

	mu.Lock()
	recovered = true
	mu.Unlock()

	second := newTestOrchestrator(cfg).Run(context.Background(), seed)
	if second.Err != nil {
		t.Fatalf("second run failed: %v", second.Err)
	}
	if second.Processed != 1 {
		t.Errorf("expected the queued page downloaded, got %d processed", second.Processed)
	}
	if second.Failed != 0 {
		t.Errorf("expected no failures on recovery, got %d", second.Failed)
	}

	st, err := state.NewStore(cfg.OutputDir).Load()
	if err != nil {
		t.Fatalf("state load failed: %v", err)
	}
	if len(st.Failed) != 0 || len(st.RetryQueue) != 0 {
		t.Errorf("expected failure state cleared, got failed=%v queue=%v", st.Failed, st.RetryQueue)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "docs", "missing.md")); err != nil {
		t.Errorf("expected recovered document: %v", err)
	}
}

// TestRunRetriesTransientFailures verifies a page that recovers after
// 503s completes successfully.
func TestRunRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	cm := newCountingMux()
	var mu sync.Mutex
	flakyAttempts := 0
	cm.mux.HandleFunc("/docs/start", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, docPage("Start", "/docs/flaky"))
	})
	cm.mux.HandleFunc("/docs/flaky", func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		flakyAttempts++
		attempt := flakyAttempts
		mu.Unlock()
		if attempt <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, docPage("Flaky"))
	})
	srv := httptest.NewServer(cm)
	defer srv.Close()

	cfg := testConfig(t)
	orch := newTestOrchestrator(cfg)

	summary := orch.Run(context.Background(), srv.URL+"/docs/start")
	if summary.Err != nil {
		t.Fatalf("run failed: %v", summary.Err)
	}
	if summary.Processed != 2 {
		t.Errorf("expected both pages processed, got %d", summary.Processed)
	}
	if summary.Failed != 0 {
		t.Errorf("expected no failures after recovery, got %d", summary.Failed)
	}
	if got := cm.count("/docs/flaky"); got != 3 {
		t.Errorf("expected 3 fetches (two 503s then success), got %d", got)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "docs", "flaky.md")); err != nil {
		t.Errorf("expected recovered page on disk: %v", err)
	}
}

// TestRunResumesFromState verifies a second run skips everything the
// first run completed, without touching the network.
func TestRunResumesFromState(t *testing.T) {
	t.Parallel()

	cm := newCountingMux()
	cm.mux.HandleFunc("/docs/start", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, docPage("Start", "/docs/a"))
	})
	cm.mux.HandleFunc("/docs/a", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, docPage("Page A"))
	})
	srv := httptest.NewServer(cm)
	defer srv.Close()

	cfg := testConfig(t)
	seed := srv.URL + "/docs/start"

	first := newTestOrchestrator(cfg).Run(context.Background(), seed)
	if first.Err != nil || first.Processed != 2 {
		t.Fatalf("first run unexpected: %+v", first)
	}

	second := newTestOrchestrator(cfg).Run(context.Background(), seed)
	if second.Err != nil {
		t.Fatalf("second run failed: %v", second.Err)
	}
	if second.Processed != 0 {
		t.Errorf("expected no downloads on resume, got %d", second.Processed)
	}
	// The seed and its replayed child are both skipped.
	if second.Skipped != 2 {
		t.Errorf("expected both pages skipped, got %d", second.Skipped)
	}
	for _, path := range []string{"/docs/start", "/docs/a"} {
		if got := cm.count(path); got != 1 {
			t.Errorf("expected no refetch of completed %s, got %d fetches", path, got)
		}
	}
}

// TestRunResumesAfterInterruptedCrawl verifies a restart reaches pages
// that were discovered but never downloaded before the interruption:
// completed pages replay their recorded links instead of being
// re-fetched.
func TestRunResumesAfterInterruptedCrawl(t *testing.T) {
	t.Parallel()

	var orch *Orchestrator
	cm := newCountingMux()
	cm.mux.HandleFunc("/docs/a", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, docPage("Page A", "/docs/b"))
	})
	cm.mux.HandleFunc("/docs/b", func(w http.ResponseWriter, _ *http.Request) {
		// Interrupt the crawl while c is still only on the frontier.
		orch.Stop()
		fmt.Fprint(w, docPage("Page B", "/docs/c"))
	})
	cm.mux.HandleFunc("/docs/c", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, docPage("Page C"))
	})
	srv := httptest.NewServer(cm)
	defer srv.Close()

	cfg := testConfig(t)
	seed := srv.URL + "/docs/a"

	orch = newTestOrchestrator(cfg)
	first := orch.Run(context.Background(), seed)
	if first.Err != nil {
		t.Fatalf("first run failed: %v", first.Err)
	}
	if first.Processed != 2 {
		t.Fatalf("expected interruption after a and b, got %d processed", first.Processed)
	}
	if got := cm.count("/docs/c"); got != 0 {
		t.Fatalf("expected c untouched before the restart, got %d fetches", got)
	}

	second := newTestOrchestrator(cfg).Run(context.Background(), seed)
	if second.Err != nil {
		t.Fatalf("second run failed: %v", second.Err)
	}
	if second.Processed != 1 {
		t.Errorf("expected only c downloaded on restart, got %d processed", second.Processed)
	}
	if second.Skipped != 2 {
		t.Errorf("expected a and b skipped, got %d", second.Skipped)
	}
	for _, path := range []string{"/docs/a", "/docs/b", "/docs/c"} {
		if got := cm.count(path); got != 1 {
			t.Errorf("expected %s fetched exactly once across both runs, got %d", path, got)
		}
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "docs", "c.md")); err != nil {
		t.Errorf("expected c on disk after restart: %v", err)
	}
}

// TestRunReportsStateSaveFailure verifies a failing state save reaches
// the status channel, not just the log.
func TestRunReportsStateSaveFailure(t *testing.T) {
	t.Parallel()

	cm := newCountingMux()
	cm.mux.HandleFunc("/docs/start", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, docPage("Start"))
	})
	srv := httptest.NewServer(cm)
	defer srv.Close()

	cfg := testConfig(t)
	// A directory squatting on the snapshot path makes every save fail
	// while the rest of the crawl proceeds.
	if err := os.Mkdir(filepath.Join(cfg.OutputDir, state.StateFileName), 0o750); err != nil {
		t.Fatal(err)
	}

	statusCh := make(chan string, 64)
	orch := newTestOrchestrator(cfg, WithStatusChannel(statusCh))

	summary := orch.Run(context.Background(), srv.URL+"/docs/start")
	if summary.Err != nil {
		t.Fatalf("run failed: %v", summary.Err)
	}
	if summary.Processed != 1 {
		t.Errorf("expected the page still downloaded, got %d processed", summary.Processed)
	}

	close(statusCh)
	reported := false
	for msg := range statusCh {
		if strings.Contains(msg, "state save failed") {
			reported = true
			break
		}
	}
	if !reported {
		t.Error("expected a state save failure on the status channel")
	}
}

// TestRunForceRefresh verifies force mode re-downloads completed pages.
func TestRunForceRefresh(t *testing.T) {
	t.Parallel()

	cm := newCountingMux()
	cm.mux.HandleFunc("/docs/start", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, docPage("Start"))
	})
	srv := httptest.NewServer(cm)
	defer srv.Close()

	cfg := testConfig(t)
	seed := srv.URL + "/docs/start"

	if s := newTestOrchestrator(cfg).Run(context.Background(), seed); s.Err != nil {
		t.Fatal(s.Err)
	}

	cfg.ForceRefresh = true
	summary := newTestOrchestrator(cfg).Run(context.Background(), seed)
	if summary.Processed != 1 {
		t.Errorf("expected forced re-download, got %d processed", summary.Processed)
	}
	if got := cm.count("/docs/start"); got != 2 {
		t.Errorf("expected 2 fetches with force refresh, got %d", got)
	}
}

// TestRunDepthLimit verifies pages past the depth limit are recorded
// as recursion failures rather than crawled.
func TestRunDepthLimit(t *testing.T) {
	t.Parallel()

	cm := newCountingMux()
	cm.mux.HandleFunc("/docs/start", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, docPage("Start", "/docs/level1"))
	})
	cm.mux.HandleFunc("/docs/level1", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, docPage("Level 1", "/docs/level2"))
	})
	cm.mux.HandleFunc("/docs/level2", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, docPage("Level 2"))
	})
	srv := httptest.NewServer(cm)
	defer srv.Close()

	cfg := testConfig(t)
	cfg.MaxDepth = 1
	// Disable widened-depth retries so the failure stays observable.
	cfg.MaxRecursionRetries = 0

	summary := newTestOrchestrator(cfg).Run(context.Background(), srv.URL+"/docs/start")
	if summary.Err != nil {
		t.Fatalf("run failed: %v", summary.Err)
	}

	st, err := state.NewStore(cfg.OutputDir).Load()
	if err != nil {
		t.Fatalf("state load failed: %v", err)
	}
	rec, ok := st.RecursionFailures[srv.URL+"/docs/level2"]
	if !ok {
		t.Fatalf("expected level2 in recursion failures, got %+v", st.RecursionFailures)
	}
	if rec.Type != model.ErrorTypeRecursionError {
		t.Errorf("unexpected error type %q", rec.Type)
	}
	if got := cm.count("/docs/level2"); got != 0 {
		t.Errorf("expected level2 never fetched, got %d", got)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "recursion_errors.json")); err != nil {
		t.Errorf("expected recursion errors artifact: %v", err)
	}
}

// TestRunRecursionRetryWidensDepth verifies depth-limit failures are
// re-attempted with the widened allowance and succeed.
func TestRunRecursionRetryWidensDepth(t *testing.T) {
	t.Parallel()

	cm := newCountingMux()
	cm.mux.HandleFunc("/docs/start", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, docPage("Start", "/docs/level1"))
	})
	cm.mux.HandleFunc("/docs/level1", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, docPage("Level 1", "/docs/level2"))
	})
	cm.mux.HandleFunc("/docs/level2", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, docPage("Level 2"))
	})
	srv := httptest.NewServer(cm)
	defer srv.Close()

	cfg := testConfig(t)
	cfg.MaxDepth = 1

	summary := newTestOrchestrator(cfg).Run(context.Background(), srv.URL+"/docs/start")
	if summary.Err != nil {
		t.Fatalf("run failed: %v", summary.Err)
	}

	st, err := state.NewStore(cfg.OutputDir).Load()
	if err != nil {
		t.Fatalf("state load failed: %v", err)
	}
	if len(st.RecursionFailures) != 0 {
		t.Errorf("expected recursion failure cleared after widened retry, got %+v", st.RecursionFailures)
	}
	if !st.IsCompleted(srv.URL + "/docs/level2") {
		t.Error("expected level2 completed after widened retry")
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "docs", "level2.md")); err != nil {
		t.Errorf("expected level2 document: %v", err)
	}
}

// TestRunStop verifies a stop requested before the run processes
// nothing but still saves state and reports.
func TestRunStop(t *testing.T) {
	t.Parallel()

	cm := newCountingMux()
	cm.mux.HandleFunc("/docs/start", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, docPage("Start"))
	})
	srv := httptest.NewServer(cm)
	defer srv.Close()

	cfg := testConfig(t)
	orch := newTestOrchestrator(cfg)
	orch.Stop()

	summary := orch.Run(context.Background(), srv.URL+"/docs/start")
	if summary.Err != nil {
		t.Fatalf("run failed: %v", summary.Err)
	}
	if summary.Processed != 0 {
		t.Errorf("expected nothing processed after stop, got %d", summary.Processed)
	}
	if got := cm.count("/docs/start"); got != 0 {
		t.Errorf("expected no fetches after stop, got %d", got)
	}
	if _, err := os.Stat(state.NewStore(cfg.OutputDir).Path()); err != nil {
		t.Errorf("expected state saved on stopped run: %v", err)
	}
}

// TestRunNotifiesObservers verifies the fire-and-forget progress and
// status channels receive updates without ever blocking the crawl.
func TestRunNotifiesObservers(t *testing.T) {
	t.Parallel()

	cm := newCountingMux()
	cm.mux.HandleFunc("/docs/start", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, docPage("Start", "/docs/a"))
	})
	cm.mux.HandleFunc("/docs/a", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, docPage("Page A"))
	})
	srv := httptest.NewServer(cm)
	defer srv.Close()

	cfg := testConfig(t)
	progressCh := make(chan model.Progress, 64)
	// Unbuffered with no reader: every send must be dropped, never block.
	statusCh := make(chan string)

	orch := newTestOrchestrator(cfg,
		WithProgressChannel(progressCh),
		WithStatusChannel(statusCh),
	)

	summary := orch.Run(context.Background(), srv.URL+"/docs/start")
	if summary.Err != nil {
		t.Fatalf("run failed: %v", summary.Err)
	}
	if summary.Processed != 2 {
		t.Errorf("expected 2 processed, got %d", summary.Processed)
	}

	close(progressCh)
	var last model.Progress
	got := 0
	for p := range progressCh {
		last = p
		got++
	}
	if got == 0 {
		t.Fatal("expected progress notifications")
	}
	if last.Done != 2 || last.Total != 2 {
		t.Errorf("expected final progress 2/2, got %d/%d", last.Done, last.Total)
	}
}

// TestRunInvalidSeed verifies a seed the scope cannot be built from
// fails the run itself.
func TestRunInvalidSeed(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	summary := newTestOrchestrator(cfg).Run(context.Background(), "not-a-url")
	if summary.Err == nil {
		t.Fatal("expected run-level error for invalid seed")
	}
}
