package github

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"varafleet/internal/domain/model"
	"varafleet/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Monitor = (*Monitor)(nil)

// maxConsecutivePollFailures bounds how long transient status-poll errors
// are retried before the monitor gives up.
const maxConsecutivePollFailures = 5

// Monitor implements the driven.Monitor port by polling the variant-analysis
// status endpoint until the run reaches a terminal state.
type Monitor struct {
	client   driven.VariantAnalysisClient
	interval time.Duration
}

// NewMonitor creates a Monitor polling through client at the given interval.
func NewMonitor(client driven.VariantAnalysisClient, interval time.Duration) *Monitor {
	return &Monitor{client: client, interval: interval}
}

// AwaitOutcome polls until the run is terminal or ctx is canceled.
// Cancellation resolves to OutcomeCanceled rather than an error, so callers
// classify it like any other terminal outcome. Transient poll errors are
// retried; only maxConsecutivePollFailures failures in a row abort the wait.
func (m *Monitor) AwaitOutcome(ctx context.Context, creds model.Credentials, job model.VariantJob) (model.JobOutcome, error) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	var consecutiveFailures int

	for {
		outcome, err := m.client.GetAnalysisStatus(ctx, creds, job)
		switch {
		case ctx.Err() != nil:
			return model.OutcomeCanceled{}, nil
		case err != nil:
			consecutiveFailures++
			slog.Warn("status poll failed",
				"name", job.Name,
				"analysis_id", job.AnalysisID,
				"consecutive_failures", consecutiveFailures,
				"error", err,
			)
			if consecutiveFailures >= maxConsecutivePollFailures {
				return nil, fmt.Errorf("polling analysis %d: %w", job.AnalysisID, err)
			}
		default:
			consecutiveFailures = 0
			if _, running := outcome.(model.OutcomeInProgress); !running {
				return outcome, nil
			}
		}

		select {
		case <-ctx.Done():
			return model.OutcomeCanceled{}, nil
		case <-ticker.C:
		}
	}
}
