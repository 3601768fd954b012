// Package application contains use-case orchestration for variant-analysis runs.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"varafleet/internal/domain/model"
	"varafleet/internal/domain/port/driven"
)

// Orchestrator drives one variant-analysis run from submission through
// monitoring to either a persisted result summary or a recorded failure,
// notifying collaborators at each milestone. It is the only stateful
// component in the core; the mapper and admission policy are pure.
type Orchestrator struct {
	creds      driven.CredentialProvider
	client     driven.VariantAnalysisClient
	monitor    driven.Monitor
	history    driven.HistoryStore
	results    driven.ResultStore
	downloader driven.Downloader
	notify     driven.Notifier

	maxDownloadBytes int64
	maxDownloadCount int

	// Tracks detached follow-up work (monitoring, auto-download, the view
	// offer) so hosts can drain it before exiting.
	wg sync.WaitGroup
}

// NewOrchestrator creates an Orchestrator with all required collaborators.
// Non-positive caps fall back to the package defaults.
func NewOrchestrator(
	creds driven.CredentialProvider,
	client driven.VariantAnalysisClient,
	monitor driven.Monitor,
	history driven.HistoryStore,
	results driven.ResultStore,
	downloader driven.Downloader,
	notify driven.Notifier,
	maxDownloadBytes int64,
	maxDownloadCount int,
) *Orchestrator {
	if maxDownloadBytes <= 0 {
		maxDownloadBytes = DefaultMaxAutoDownloadSize
	}
	if maxDownloadCount <= 0 {
		maxDownloadCount = DefaultMaxAutoDownloadCount
	}
	return &Orchestrator{
		creds:            creds,
		client:           client,
		monitor:          monitor,
		history:          history,
		results:          results,
		downloader:       downloader,
		notify:           notify,
		maxDownloadBytes: maxDownloadBytes,
		maxDownloadCount: maxDownloadCount,
	}
}

// SubmitQuery submits a query to the variant-analysis platform and, when a
// job comes back, detaches monitoring as an independent cancellable unit of
// work. The caller is never blocked on remote completion. If the platform
// rejects the submission, no job exists and no follow-up occurs.
func (o *Orchestrator) SubmitQuery(ctx context.Context, sub model.QuerySubmission) error {
	creds, err := o.creds.Credentials(ctx)
	if err != nil {
		return fmt.Errorf("obtaining credentials: %w", err)
	}

	job, err := o.client.SubmitAnalysis(ctx, creds, sub)
	if err != nil {
		return fmt.Errorf("submitting variant analysis %q: %w", sub.Name, err)
	}
	if job == nil {
		slog.Info("submission produced no job, skipping monitoring", "name", sub.Name)
		return nil
	}

	// The notifier doubles as the submission progress sink, so milestones
	// reach the user and not just the log.
	o.notify.Info(fmt.Sprintf("submitted %q: analysis %d across %d repositories",
		job.Name, job.AnalysisID, len(job.Repositories)))

	monitored := *job
	o.spawn(func() {
		if err := o.MonitorRun(ctx, monitored); err != nil {
			o.notify.ReportError(fmt.Sprintf("monitoring variant analysis %q", monitored.Name), err)
		}
	})

	return nil
}

// MonitorRun tracks a submitted job until its terminal outcome and records
// the result. The job descriptor is persisted before the run is registered
// in history, and registration happens before polling begins, so a crash or
// cancellation mid-poll always leaves a recoverable record. The history view
// is refreshed unconditionally once the outcome has been classified.
func (o *Orchestrator) MonitorRun(ctx context.Context, job model.VariantJob) error {
	job.StorageKey = NewStorageKey(job.Name)
	startedAt := time.Now().UTC()

	if err := o.results.CreateRunDir(job.StorageKey, startedAt); err != nil {
		return fmt.Errorf("creating run directory: %w", err)
	}
	if err := o.results.WriteJob(job.StorageKey, job); err != nil {
		return fmt.Errorf("persisting job descriptor: %w", err)
	}

	if _, err := o.history.Add(ctx, model.HistoryEntry{
		Name:            job.Name,
		Language:        job.Language,
		ControllerRepo:  job.ControllerRepo,
		AnalysisID:      job.AnalysisID,
		StorageKey:      job.StorageKey,
		RepositoryCount: len(job.Repositories),
		Status:          model.RunStatusInProgress,
		StartedAt:       startedAt,
	}); err != nil {
		return fmt.Errorf("registering run in history: %w", err)
	}
	defer o.notify.RefreshHistoryView()

	creds, err := o.creds.Credentials(ctx)
	if err != nil {
		return fmt.Errorf("obtaining credentials: %w", err)
	}

	outcome, err := o.monitor.AwaitOutcome(ctx, creds, job)
	if err != nil {
		// The run's tracked status stays in_progress: the remote run may
		// still be live, and a later manual inspection can resolve it.
		return fmt.Errorf("awaiting outcome: %w", err)
	}

	// Observed before mapping; the summary's completion time is ours, not
	// the server's.
	completedAt := time.Now().UTC()

	switch oc := outcome.(type) {
	case model.OutcomeSucceeded:
		o.handleSuccess(ctx, creds, job, completedAt)

	case model.OutcomeFailed:
		if err := o.history.MarkFailed(ctx, job.StorageKey, oc.Reason, completedAt); err != nil {
			o.notify.ReportError(fmt.Sprintf("recording failure of %q", job.Name), err)
		}
		o.notify.ReportError(fmt.Sprintf("variant analysis %q failed: %s", job.Name, oc.Reason), nil)

	case model.OutcomeCanceled:
		if err := o.history.MarkFailed(ctx, job.StorageKey, model.FailureReasonCanceled, completedAt); err != nil {
			o.notify.ReportError(fmt.Sprintf("recording cancellation of %q", job.Name), err)
		}
		o.notify.Info(fmt.Sprintf("variant analysis %q was cancelled", job.Name))

	case model.OutcomeInProgress:
		// The monitor's contract is terminal outcomes only.
		o.notify.ReportError(fmt.Sprintf("unexpected status: monitor returned in_progress as the terminal outcome of %q", job.Name), nil)

	default:
		panic(fmt.Sprintf("unhandled job outcome %T", outcome))
	}

	return nil
}

// handleSuccess runs the success branch: fetch the index, mark the run
// completed, map and persist the summary, then detach auto-download and the
// view offer as mutually independent follow-ups.
func (o *Orchestrator) handleSuccess(ctx context.Context, creds model.Credentials, job model.VariantJob, completedAt time.Time) {
	index, err := o.client.FetchResultIndex(ctx, creds, job)
	if err != nil || index == nil {
		// Deliberately not marked failed: the remote run succeeded, so the
		// entry stays in_progress and the index can be fetched manually later.
		o.notify.ReportError(fmt.Sprintf("could not retrieve result index for %q", job.Name), err)
		return
	}

	if err := o.history.MarkCompleted(ctx, job.StorageKey, completedAt); err != nil {
		o.notify.ReportError(fmt.Sprintf("marking %q completed", job.Name), err)
	}

	summary := MapResultIndex(*index, job.StorageKey, completedAt)
	if err := o.results.WriteSummary(job.StorageKey, summary); err != nil {
		o.notify.ReportError(fmt.Sprintf("persisting result summary for %q", job.Name), err)
		return
	}

	slog.Info("variant analysis completed",
		"name", job.Name,
		"repositories", len(summary.Summaries),
		"skipped", index.SkippedRepositoryCount,
	)

	o.spawn(func() {
		if err := o.AutoDownload(ctx, summary); err != nil {
			o.notify.ReportError(fmt.Sprintf("auto-downloading results for %q", job.Name), err)
		}
	})
	o.spawn(func() {
		if err := o.notify.OfferViewResults(job, summary); err != nil {
			o.notify.ReportError(fmt.Sprintf("offering results view for %q", job.Name), err)
		}
	})
}

// AutoDownload applies the admission policy to a persisted summary and hands
// the surviving requests to the download engine. Retry and partial-failure
// handling for the fetches themselves belong to the engine.
func (o *Orchestrator) AutoDownload(ctx context.Context, summary model.QueryResultSummary) error {
	requests := AdmitDownloads(summary.Summaries, o.maxDownloadBytes, o.maxDownloadCount)
	if len(requests) == 0 {
		slog.Info("no artifacts admitted for auto-download", "candidates", len(summary.Summaries))
		return nil
	}

	creds, err := o.creds.Credentials(ctx)
	if err != nil {
		return fmt.Errorf("obtaining credentials: %w", err)
	}

	slog.Info("auto-downloading result artifacts",
		"admitted", len(requests),
		"candidates", len(summary.Summaries),
	)

	return o.downloader.Download(ctx, creds, requests, func(results []model.AnalysisResult) {
		o.notify.SetAnalysisResults(results)
	})
}

// Wait blocks until all detached follow-up work has drained. Hosts call this
// before exiting.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) spawn(fn func()) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		fn()
	}()
}
