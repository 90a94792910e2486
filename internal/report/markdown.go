package report

import (
	"io"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/fnbrainvault/webmark/internal/model"
	"github.com/fnbrainvault/webmark/internal/state"
)

// MarkdownFile is the human-readable failure report file name.
const MarkdownFile = "failures.md"

// MarkdownWriter outputs the failure report in Markdown format.
// This format is designed for reading alongside the downloaded docs.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the full failure report in Markdown format.
func (w *MarkdownWriter) Write(st *state.DownloadState) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Download Failure Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Completed", strconv.Itoa(len(st.Completed))},
			{"Permanent failures", strconv.Itoa(len(st.Failed))},
			{"Queued for retry", strconv.Itoa(len(st.RetryQueue))},
			{"Recursion failures", strconv.Itoa(len(st.RecursionFailures))},
		},
	})
	md.PlainText("")

	w.writeAlert(md, st)
	w.writeFailures(md, st)
	w.writeRecursionFailures(md, st)

	return len(md.String()), md.Build()
}

// writeAlert summarizes the run outcome as a GitHub-flavored alert.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, st *state.DownloadState) {
	switch {
	case len(st.Failed) > 0:
		md.Warningf(
			"%d page(s) failed permanently. Run the retry command to attempt them again.",
			len(st.Failed),
		)
	case len(st.RecursionFailures) > 0:
		md.Importantf(
			"%d page(s) hit the traversal depth limit. Retry with a wider depth budget.",
			len(st.RecursionFailures),
		)
	default:
		md.Tip("All pages downloaded successfully.")
	}
	md.PlainText("")
}

// writeFailures writes the permanent failure table, sorted by URL so
// the report is stable across runs.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, st *state.DownloadState) {
	md.H2("Permanent Failures")
	md.PlainText("")

	if len(st.Failed) == 0 {
		md.PlainText("No permanent failures.")
		md.PlainText("")
		return
	}

	urls := make([]string, 0, len(st.Failed))
	for u := range st.Failed {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	rows := make([][]string, 0, len(urls))
	for _, u := range urls {
		rec := st.Failed[u]
		rows = append(rows, []string{
			"`" + u + "`",
			strconv.Itoa(rec.StatusCode),
			truncateString(rec.Message, 60),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status", "Message"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeRecursionFailures writes pages skipped because the traversal
// depth limit was reached.
func (w *MarkdownWriter) writeRecursionFailures(md *markdown.Markdown, st *state.DownloadState) {
	if len(st.RecursionFailures) == 0 {
		return
	}

	md.H2("Depth Limit Failures")
	md.PlainText("")

	urls := make([]string, 0, len(st.RecursionFailures))
	for u := range st.RecursionFailures {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	rows := make([][]string, 0, len(urls))
	for _, u := range urls {
		rec := st.RecursionFailures[u]
		rows = append(rows, []string{
			"`" + u + "`",
			errorTypeLabel(rec.Type),
			rec.Timestamp.Format("2006-01-02 15:04:05"),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Error Type", "When"},
		Rows:   rows,
	})
	md.PlainText("")
}

// errorTypeLabel keeps report wording stable if error type names change.
func errorTypeLabel(t model.ErrorType) string {
	return string(t)
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
