package main

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"

	"varafleet/internal/domain/model"
	"varafleet/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Notifier = (*consoleNotifier)(nil)

// consoleNotifier implements the Notifier port for a terminal host. Errors
// and milestones go through one log+print channel; result tables render with
// go-pretty.
type consoleNotifier struct {
	mu      sync.Mutex // serializes table output from concurrent follow-ups
	out     io.Writer
	history driven.HistoryStore
}

func newConsoleNotifier(out io.Writer, history driven.HistoryStore) *consoleNotifier {
	return &consoleNotifier{out: out, history: history}
}

func (n *consoleNotifier) Info(msg string) {
	slog.Info(msg)
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.out, msg)
}

func (n *consoleNotifier) ReportError(msg string, err error) {
	slog.Error(msg, "error", err)
	n.mu.Lock()
	defer n.mu.Unlock()
	if err != nil {
		fmt.Fprintf(n.out, "error: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(n.out, "error: %s\n", msg)
	}
}

// OfferViewResults prints the completed run's per-repository result counts,
// repositories with the most findings first.
func (n *consoleNotifier) OfferViewResults(job model.VariantJob, summary model.QueryResultSummary) error {
	ordered := make([]model.AnalysisSummary, len(summary.Summaries))
	copy(ordered, summary.Summaries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ResultCount > ordered[j].ResultCount
	})

	var total int
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Repository", "Results", "Artifact", "Bytes"})
	for _, s := range ordered {
		total += s.ResultCount
		tw.AppendRow(table.Row{s.Nwo, s.ResultCount, string(s.Download.FileKind), s.FileSize})
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.out, "\n%s: %d results across %d repositories (stored as %s)\n",
		job.Name, total, len(ordered), job.StorageKey)
	fmt.Fprintln(n.out, tw.Render())
	return nil
}

func (n *consoleNotifier) SetAnalysisResults(results []model.AnalysisResult) {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Repository", "Results", "File"})
	for _, r := range results {
		tw.AppendRow(table.Row{r.Nwo, r.ResultCount, r.FilePath})
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.out, "\ndownloaded %d artifacts:\n", len(results))
	fmt.Fprintln(n.out, tw.Render())
}

// RefreshHistoryView is a no-op beyond logging for a one-shot CLI host: the
// history command re-reads the store on demand.
func (n *consoleNotifier) RefreshHistoryView() {
	slog.Debug("history view refreshed")
}

// renderHistory prints the tracked runs table for the history command.
func (n *consoleNotifier) renderHistory(entries []model.HistoryEntry) {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Storage Key", "Status", "Repos", "Language", "Started", "Failure Reason"})
	for _, e := range entries {
		started := e.StartedAt.Format("2006-01-02 15:04")
		tw.AppendRow(table.Row{e.StorageKey, string(e.Status), strconv.Itoa(e.RepositoryCount), e.Language, started, e.FailureReason})
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.out, tw.Render())
}
