package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fnbrainvault/webmark/internal/config"
	"github.com/fnbrainvault/webmark/internal/database"
	"github.com/fnbrainvault/webmark/internal/document"
	"github.com/fnbrainvault/webmark/internal/extract"
	"github.com/fnbrainvault/webmark/internal/fetch"
	"github.com/fnbrainvault/webmark/internal/model"
	"github.com/fnbrainvault/webmark/internal/report"
	"github.com/fnbrainvault/webmark/internal/retry"
	"github.com/fnbrainvault/webmark/internal/state"
)

// Orchestrator drives a full download run: depth-first traversal from
// the seed URL, fetch with retry, extraction, document writing, and
// state persistence.
//
// Design decision: The crawl runs on a single logical worker rather
// than a worker pool because:
// 1. Documentation servers rate-limit aggressively; one polite worker
//    finishes where a pool gets banned
// 2. Depth-first ordering and the resume state stay trivially
//    consistent without locking
// 3. The only fan-out that pays off, image downloads, is bounded
//    separately
type Orchestrator struct {
	cfg      *config.Config
	renderer fetch.Renderer
	logger   *slog.Logger
	statusDB *database.StatusDB

	// progressCh and statusCh are optional observer channels. Sends are
	// non-blocking; a slow or absent observer never stalls the crawl.
	progressCh chan<- model.Progress
	statusCh   chan<- string

	// sleep is injectable so tests run without real delays.
	sleep func(ctx context.Context, d time.Duration) error

	// stopped is the cooperative stop flag, checked at URL boundaries
	// and before every retry sleep. Never mid-page.
	stopped atomic.Bool

	// Run-scoped collaborators, set up at the start of Run.
	scope      *extract.Scope
	extractor  *extract.Extractor
	writer     *document.Writer
	store      *state.Store
	st         *state.DownloadState
	classifier *retry.Classifier
	frontier   *Frontier
	images     *ImageDownloader

	unsaved   int
	processed int
	failed    int
	skipped   int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRenderer replaces the default HTTP renderer.
func WithRenderer(r fetch.Renderer) Option {
	return func(o *Orchestrator) {
		o.renderer = r
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithStatusDB attaches the advisory status database. Updates to it
// are best-effort; a write failure is logged and ignored.
func WithStatusDB(db *database.StatusDB) Option {
	return func(o *Orchestrator) {
		o.statusDB = db
	}
}

// WithProgressChannel attaches a progress observer. Sends are
// fire-and-forget.
func WithProgressChannel(ch chan<- model.Progress) Option {
	return func(o *Orchestrator) {
		o.progressCh = ch
	}
}

// WithStatusChannel attaches a human-readable status observer. Sends
// are fire-and-forget.
func WithStatusChannel(ch chan<- string) Option {
	return func(o *Orchestrator) {
		o.statusCh = ch
	}
}

// WithSleepFunc replaces the delay function used for rate limiting and
// retry backoff. Tests use this to run instantly.
func WithSleepFunc(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Orchestrator) {
		o.sleep = fn
	}
}

// New creates an Orchestrator for the given configuration.
func New(cfg *config.Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:    cfg,
		logger: slog.Default(),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Stop requests a cooperative stop. The current URL finishes its
// fetch-extract-write cycle, state is saved, and Run returns. Safe to
// call from any goroutine, any number of times.
func (o *Orchestrator) Stop() {
	o.stopped.Store(true)
}

// Stopped reports whether a stop has been requested.
func (o *Orchestrator) Stopped() bool {
	return o.stopped.Load()
}

// Run executes a full download run from the seed URL and returns a
// summary. Individual page failures are recorded in state and reports;
// only resource initialization failures (output directory, renderer,
// invalid seed) abort the run itself.
func (o *Orchestrator) Run(ctx context.Context, seedURL string) model.RunSummary {
	start := time.Now()

	if err := o.setup(seedURL); err != nil {
		return model.RunSummary{Elapsed: time.Since(start), Err: err}
	}
	defer func() {
		if err := o.renderer.Close(); err != nil {
			o.logger.Warn("renderer close failed", "error", err)
		}
	}()

	o.frontier.Push(seedURL, 0)
	o.mainLoop(ctx)

	if !o.Stopped() && ctx.Err() == nil {
		o.retryPass(ctx)
		o.recursionRetryPass(ctx)
	}

	o.finish()

	return model.RunSummary{
		Processed: o.processed,
		Failed:    o.failed,
		Skipped:   o.skipped,
		Elapsed:   time.Since(start),
	}
}

// RetryFailed re-attempts the failures recorded in persisted state
// without re-crawling pages that already completed. The seed URL is
// still required because it defines the scope filter. When
// forceRecursion is true, depth-limit failures are retried even with
// an exhausted budget.
func (o *Orchestrator) RetryFailed(ctx context.Context, seedURL string, forceRecursion bool) model.RunSummary {
	start := time.Now()

	if err := o.setup(seedURL); err != nil {
		return model.RunSummary{Elapsed: time.Since(start), Err: err}
	}
	defer func() {
		if err := o.renderer.Close(); err != nil {
			o.logger.Warn("renderer close failed", "error", err)
		}
	}()

	o.retryPass(ctx)
	if forceRecursion {
		o.recursionPassOnce(ctx, 0)
	} else {
		o.recursionRetryPass(ctx)
	}

	o.finish()

	return model.RunSummary{
		Processed: o.processed,
		Failed:    o.failed,
		Skipped:   o.skipped,
		Elapsed:   time.Since(start),
	}
}

// setup initializes run-scoped collaborators. Any error here is fatal
// to the run.
func (o *Orchestrator) setup(seedURL string) error {
	scope, err := extract.NewScope(seedURL, o.cfg.LinkPattern)
	if err != nil {
		return err
	}
	o.scope = scope
	o.extractor = extract.New(scope)

	writer, err := document.NewWriter(o.cfg.OutputDir)
	if err != nil {
		return err
	}
	o.writer = writer

	if o.renderer == nil {
		o.renderer = fetch.NewHTTPRenderer(o.cfg.Timeout,
			fetch.WithUserAgent(o.cfg.UserAgent),
			fetch.WithMaxBodySize(o.cfg.MaxBodySize),
			fetch.WithCredentials(o.cfg.Cookie, o.cfg.Headers),
		)
	}

	o.store = state.NewStore(o.cfg.OutputDir)
	st, err := o.store.Load()
	if err != nil {
		if errors.Is(err, state.ErrCorruptState) {
			// Degrade to a fresh crawl rather than refusing to run.
			o.logger.Warn("state snapshot unreadable, starting fresh",
				"path", o.store.Path(), "error", err)
		} else {
			return err
		}
	}
	o.st = st

	o.classifier = retry.NewClassifier(o.cfg.MaxRetries, o.cfg.RetryBaseDelay, o.cfg.MaxRecursionRetries)
	o.frontier = NewFrontier()
	o.images = NewImageDownloader(o.cfg.Timeout, o.cfg.UserAgent, o.logger)

	o.logger.Info("starting download run",
		"seed", seedURL,
		"scope_host", scope.Host(),
		"scope_prefix", scope.PathPrefix(),
		"output", o.cfg.OutputDir,
		"resumed_completed", len(o.st.Completed),
	)
	return nil
}

// mainLoop drains the frontier until it is empty, the context is
// cancelled, or a stop is requested.
func (o *Orchestrator) mainLoop(ctx context.Context) {
	for {
		if o.Stopped() || ctx.Err() != nil {
			o.logger.Info("stop requested, saving state", "remaining", o.frontier.Len())
			return
		}

		url, depth, ok := o.frontier.Pop()
		if !ok {
			return
		}

		o.processURL(ctx, url, depth, o.cfg.MaxDepth, true)
	}
}

// processURL runs the full cycle for one URL: completed short-circuit,
// depth guard, rate limit, fetch with retry, extract, write, and state
// bookkeeping. When discover is true, in-scope links found on the page
// are pushed onto the frontier.
func (o *Orchestrator) processURL(ctx context.Context, pageURL string, depth, depthLimit int, discover bool) {
	if o.st.IsCompleted(pageURL) && !o.cfg.ForceRefresh {
		o.skipped++
		o.frontier.Mark(pageURL, Completed)
		// The frontier does not survive restarts. Replaying the links
		// recorded for this page keeps its undownloaded descendants
		// reachable without a re-fetch.
		if discover {
			for _, link := range o.st.ChildLinks[pageURL] {
				o.frontier.Push(link, depth+1)
			}
		}
		o.logger.Debug("skipping completed page", "url", pageURL)
		o.notifyProgress()
		return
	}

	if depth > depthLimit {
		rec := model.NewErrorRecord(pageURL, model.ErrorTypeRecursionError,
			fmt.Sprintf("depth %d exceeds limit %d", depth, depthLimit))
		o.st.RecordRecursionFailure(rec)
		o.frontier.Mark(pageURL, RecursionFailed)
		o.failed++
		o.logger.Warn("depth limit reached", "url", pageURL, "depth", depth)
		o.recordStatus(ctx, pageURL, database.StatusDepthLimited, 0, rec.Message, 0)
		o.saveState(true)
		o.notifyProgress()
		return
	}

	if err := o.sleep(ctx, o.cfg.RateLimitDelay); err != nil {
		return
	}

	o.notifyStatus("downloading " + pageURL)
	outcome, decision := o.fetchWithRetry(ctx, pageURL)

	if decision.Kind != retry.Success {
		statusCode := outcome.StatusCode
		o.st.RecordFailure(pageURL, statusCode, decision.Reason)
		o.frontier.Mark(pageURL, Failed)
		o.failed++
		o.logger.Warn("page failed permanently",
			"url", pageURL, "status", statusCode, "reason", decision.Reason)
		o.notifyStatus("failed " + pageURL + ": " + decision.Reason)
		o.recordStatus(ctx, pageURL, database.StatusFailed, statusCode, decision.Reason, 0)
		o.saveState(true)
		o.notifyProgress()
		return
	}

	page := &fetch.RenderedPage{
		URL:         outcome.URL,
		StatusCode:  outcome.StatusCode,
		Body:        outcome.Body,
		ContentType: outcome.ContentType,
	}
	extracted, err := o.extractor.Extract(page, pageURL)
	if err != nil {
		o.st.RecordFailure(pageURL, outcome.StatusCode, err.Error())
		o.frontier.Mark(pageURL, Failed)
		o.failed++
		o.logger.Warn("extraction failed", "url", pageURL, "error", err)
		o.recordStatus(ctx, pageURL, database.StatusFailed, outcome.StatusCode, err.Error(), 0)
		o.saveState(true)
		o.notifyProgress()
		return
	}

	docPath, err := o.writer.Write(pageURL, extracted)
	if err != nil {
		o.st.RecordFailure(pageURL, outcome.StatusCode, err.Error())
		o.frontier.Mark(pageURL, Failed)
		o.failed++
		o.logger.Warn("document write failed", "url", pageURL, "error", err)
		o.recordStatus(ctx, pageURL, database.StatusFailed, outcome.StatusCode, err.Error(), 0)
		o.saveState(true)
		o.notifyProgress()
		return
	}

	if o.cfg.DownloadImages && len(extracted.Images) > 0 {
		o.images.Download(ctx, extracted.Images, filepath.Join(filepath.Dir(docPath), "images"))
	}

	pushed := 0
	if discover {
		for _, link := range extracted.Links {
			if o.frontier.Push(link, depth+1) {
				pushed++
			}
		}
	}

	o.st.MarkCompleted(pageURL)
	o.st.RecordChildLinks(pageURL, extracted.Links)
	o.frontier.Mark(pageURL, Completed)
	o.processed++
	o.logger.Info("page saved",
		"url", pageURL, "title", extracted.Title, "path", docPath,
		"links", len(extracted.Links), "new", pushed, "depth", depth)
	o.notifyStatus("completed " + pageURL)
	o.recordStatus(ctx, pageURL, database.StatusCompleted, outcome.StatusCode, "", len(extracted.Links))
	o.saveState(false)
	o.notifyProgress()
}

// fetchWithRetry fetches the URL, consulting the classifier after each
// attempt and sleeping between retries. It returns the final outcome
// and the terminal decision (Success or PermanentFail).
func (o *Orchestrator) fetchWithRetry(ctx context.Context, pageURL string) (*model.FetchOutcome, retry.Decision) {
	for retryCount := 0; ; retryCount++ {
		rendered, err := o.renderer.Render(ctx, pageURL)
		outcome := fetch.Outcome(pageURL, rendered, err)

		decision := o.classifier.Classify(outcome, retryCount)
		if decision.Kind != retry.Retry {
			return outcome, decision
		}

		o.logger.Debug("retrying",
			"url", pageURL, "attempt", retryCount+1,
			"max", o.classifier.MaxRetries(), "delay", decision.Delay)
		o.notifyStatus(fmt.Sprintf("retrying %s (attempt %d/%d)",
			pageURL, retryCount+1, o.classifier.MaxRetries()))

		if o.Stopped() {
			return outcome, retry.Decision{Kind: retry.PermanentFail, Reason: "stopped"}
		}
		if err := o.sleep(ctx, decision.Delay); err != nil {
			return outcome, retry.Decision{Kind: retry.PermanentFail, Reason: "cancelled"}
		}
	}
}

// retryPass re-attempts queued failures from earlier runs, once each,
// with a fresh retry budget. URLs that failed during this run are left
// alone.
func (o *Orchestrator) retryPass(ctx context.Context) {
	queue := append([]string(nil), o.st.RetryQueue...)
	if len(queue) == 0 {
		return
	}

	o.logger.Info("retrying failed downloads", "count", len(queue))
	o.notifyStatus(fmt.Sprintf("retrying %d failed downloads", len(queue)))

	for _, pageURL := range queue {
		if o.Stopped() || ctx.Err() != nil {
			return
		}
		if o.st.IsCompleted(pageURL) {
			continue
		}
		// A URL that already failed this run keeps its outcome. The
		// retry pass serves failures inherited from earlier runs; the
		// retry command is the second chance for fresh ones.
		if s := o.frontier.State(pageURL); s == Failed || s == RecursionFailed {
			continue
		}
		if o.statusDB != nil {
			if rec, err := o.statusDB.GetStatus(ctx, pageURL); err == nil && rec != nil {
				o.logger.Debug("retrying recorded failure",
					"url", pageURL, "last_status", rec.Status,
					"last_checked", rec.LastChecked)
			}
		}
		o.processURL(ctx, pageURL, 0, o.cfg.MaxDepth, true)
	}

	// The retry pass may have discovered pages the failed fetches were
	// hiding. Drain them under the normal depth limit.
	o.mainLoop(ctx)
}

// recursionRetryPass re-attempts depth-limit failures with a widened
// depth allowance, one extra attempt per URL per run, within the
// recursion retry budget.
func (o *Orchestrator) recursionRetryPass(ctx context.Context) {
	if len(o.st.RecursionFailures) == 0 {
		return
	}

	for attempt := 0; o.classifier.ShouldRetryRecursion(attempt); attempt++ {
		if len(o.st.RecursionFailures) == 0 {
			return
		}
		if !o.recursionPassOnce(ctx, attempt) {
			return
		}
	}
}

// recursionPassOnce runs a single widened-depth pass over the current
// recursion failures. It reports whether the pass ran to completion.
func (o *Orchestrator) recursionPassOnce(ctx context.Context, attempt int) bool {
	urls := make([]string, 0, len(o.st.RecursionFailures))
	for u := range o.st.RecursionFailures {
		urls = append(urls, u)
	}
	if len(urls) == 0 {
		return true
	}

	o.logger.Info("retrying depth-limited downloads",
		"count", len(urls), "attempt", attempt+1,
		"widened_depth", config.DefaultRecursionRetryDepth)

	for _, pageURL := range urls {
		if o.Stopped() || ctx.Err() != nil {
			return false
		}
		if o.frontier.State(pageURL) == RecursionFailed {
			o.failed--
		}
		o.processURL(ctx, pageURL, 0, config.DefaultRecursionRetryDepth, true)
	}

	// Children found under the widened allowance still crawl under the
	// widened limit; they were only reachable because of it.
	for {
		url, depth, ok := o.frontier.Pop()
		if !ok {
			return true
		}
		if o.Stopped() || ctx.Err() != nil {
			return false
		}
		o.processURL(ctx, url, depth, config.DefaultRecursionRetryDepth, true)
	}
}

// finish saves final state and writes the failure reports and index.
// Report failures are logged, never fatal: the documents on disk are
// the deliverable.
func (o *Orchestrator) finish() {
	if err := o.store.Save(o.st); err != nil {
		o.logger.Error("final state save failed", "error", err)
		o.notifyStatus("state save failed: " + err.Error())
	}

	// One pass over the state feeds both report formats.
	var writers []report.Writer
	var files []*os.File
	for _, target := range []struct {
		name  string
		build func(io.Writer) report.Writer
	}{
		{report.FailedDownloadsFile, func(w io.Writer) report.Writer { return report.NewJSONWriter(w) }},
		{report.MarkdownFile, func(w io.Writer) report.Writer { return report.NewMarkdownWriter(w) }},
	} {
		f, err := os.Create(filepath.Join(o.cfg.OutputDir, target.name))
		if err != nil {
			o.logger.Warn("failure report create failed", "file", target.name, "error", err)
			continue
		}
		files = append(files, f)
		writers = append(writers, target.build(f))
	}
	if _, err := report.NewMultiWriter(writers...).Write(o.st); err != nil {
		o.logger.Warn("failure report write failed", "error", err)
	}
	for _, f := range files {
		if err := f.Close(); err != nil {
			o.logger.Warn("failure report close failed", "error", err)
		}
	}

	if err := report.WriteRecursionErrors(o.cfg.OutputDir, o.st); err != nil {
		o.logger.Warn("recursion artifact write failed", "error", err)
	}

	if err := o.writer.GenerateIndex(); err != nil {
		o.logger.Warn("index generation failed", "error", err)
	}

	o.logger.Info("run finished",
		"processed", o.processed, "failed", o.failed, "skipped", o.skipped,
		"completed_total", len(o.st.Completed))
}

// saveState persists the snapshot either immediately (force) or after
// SaveInterval completions have accumulated. Save errors are logged
// and the crawl continues; the next interval tries again.
func (o *Orchestrator) saveState(force bool) {
	o.unsaved++
	if !force && o.unsaved < o.cfg.SaveInterval {
		return
	}
	if err := o.store.Save(o.st); err != nil {
		o.logger.Error("state save failed", "error", err)
		o.notifyStatus("state save failed: " + err.Error())
		return
	}
	o.unsaved = 0
}

// recordStatus updates the advisory status database, if attached.
func (o *Orchestrator) recordStatus(ctx context.Context, url, status string, code int, message string, children int) {
	if o.statusDB == nil {
		return
	}
	err := o.statusDB.UpsertStatus(ctx, &database.PageStatus{
		URL:        url,
		Status:     status,
		StatusCode: code,
		Message:    message,
		ChildCount: children,
	})
	if err != nil {
		o.logger.Debug("status db update failed", "url", url, "error", err)
	}
}

// notifyProgress sends a progress snapshot without blocking.
func (o *Orchestrator) notifyProgress() {
	p := model.Progress{
		Done:  o.processed + o.failed + o.skipped,
		Total: o.frontier.Known(),
	}
	select {
	case o.progressCh <- p:
	default:
	}
}

// notifyStatus sends a status line without blocking.
func (o *Orchestrator) notifyStatus(s string) {
	select {
	case o.statusCh <- s:
	default:
	}
}

// sleepContext waits for the duration or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
