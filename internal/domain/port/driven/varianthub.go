package driven

import (
	"context"

	"varafleet/internal/domain/model"
)

// CredentialProvider defines the driven port for obtaining API credentials.
type CredentialProvider interface {
	// Credentials returns the token used for all variant-analysis API calls.
	Credentials(ctx context.Context) (model.Credentials, error)
}

// VariantAnalysisClient defines the driven port for the remote
// variant-analysis platform.
type VariantAnalysisClient interface {
	// SubmitAnalysis submits a query against the fleet of repositories in sub.
	// It returns (nil, nil) when the platform rejects the submission as
	// invalid: no job exists in that case and no follow-up should occur.
	SubmitAnalysis(ctx context.Context, creds model.Credentials, sub model.QuerySubmission) (*model.VariantJob, error)

	// GetAnalysisStatus fetches the run's current status. It may return
	// OutcomeInProgress; callers that need a terminal outcome should go
	// through a Monitor instead.
	GetAnalysisStatus(ctx context.Context, creds model.Credentials, job model.VariantJob) (model.JobOutcome, error)

	// FetchResultIndex retrieves the per-repository artifact manifest for a
	// succeeded run. Returns (nil, nil) when the platform has no index for
	// the run.
	FetchResultIndex(ctx context.Context, creds model.Credentials, job model.VariantJob) (*model.ResultIndex, error)
}

// Monitor defines the driven port for awaiting a run's terminal outcome.
type Monitor interface {
	// AwaitOutcome blocks until the run reaches a terminal state or ctx is
	// canceled. Cancellation resolves to OutcomeCanceled, never an error.
	// The returned outcome is always terminal; OutcomeInProgress from this
	// call is a contract violation.
	AwaitOutcome(ctx context.Context, creds model.Credentials, job model.VariantJob) (model.JobOutcome, error)
}
