package driven

import (
	"context"

	"varafleet/internal/domain/model"
)

// ResultsHandler receives artifacts the download engine has finished writing
// to disk.
type ResultsHandler func(results []model.AnalysisResult)

// Downloader defines the driven port for the artifact fetch engine.
// Per-target failures are the engine's concern and must not fail the whole
// pass; cancellation aborts pending fetches but retains completed files.
type Downloader interface {
	Download(ctx context.Context, creds model.Credentials, requests []model.DownloadRequest, onResults ResultsHandler) error
}
