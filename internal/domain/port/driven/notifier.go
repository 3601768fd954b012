package driven

import "varafleet/internal/domain/model"

// Notifier defines the driven port for the presentation layer. All
// user-visible failures flow through ReportError; none of them terminate the
// process.
type Notifier interface {
	Info(msg string)
	// ReportError logs and surfaces a failure. err may be nil when the
	// message alone carries the detail.
	ReportError(msg string, err error)

	// OfferViewResults offers the user a look at a completed run's results.
	// An error here is isolated by the caller and never alters run status.
	OfferViewResults(job model.VariantJob, summary model.QueryResultSummary) error

	// SetAnalysisResults forwards downloaded artifacts to the presentation layer.
	SetAnalysisResults(results []model.AnalysisResult)

	// RefreshHistoryView re-renders the tracked-run view. Called
	// unconditionally after a run's outcome is classified.
	RefreshHistoryView()
}
