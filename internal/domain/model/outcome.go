package model

// JobOutcome is the terminal classification of a variant-analysis run, as
// observed by polling. It is a closed sum type: the only implementations live
// in this package, so a type switch over all four variants plus a loud
// default covers every case the monitor can produce.
type JobOutcome interface {
	isJobOutcome()
}

// OutcomeInProgress means the run has not reached a terminal state. A
// terminal poll must never return it; consumers treat it as a contract
// violation by the monitor.
type OutcomeInProgress struct{}

// OutcomeSucceeded means the remote run completed and a result index is
// available for retrieval.
type OutcomeSucceeded struct{}

// OutcomeFailed means the remote run completed unsuccessfully. Reason is the
// server-supplied detail string, recorded verbatim.
type OutcomeFailed struct {
	Reason string
}

// OutcomeCanceled means the run was canceled, either remotely or because the
// local cancellation signal fired during polling.
type OutcomeCanceled struct{}

func (OutcomeInProgress) isJobOutcome() {}
func (OutcomeSucceeded) isJobOutcome()  {}
func (OutcomeFailed) isJobOutcome()     {}
func (OutcomeCanceled) isJobOutcome()   {}

// FailureReasonCanceled is the failure reason recorded on a run's history
// entry when its outcome is OutcomeCanceled.
const FailureReasonCanceled = "Cancelled"
