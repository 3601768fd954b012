package model

import "time"

// ArtifactKind is the expected file name of a downloaded result artifact.
type ArtifactKind string

const (
	ArtifactKindSarif ArtifactKind = "results.sarif"
	ArtifactKindBqrs  ArtifactKind = "results.bqrs"
)

// DownloadDescriptor carries everything needed to fetch one repository's
// result artifact and file it under the owning run's storage directory.
type DownloadDescriptor struct {
	ArtifactID int64        `json:"artifact_id"`
	FetchPath  string       `json:"fetch_path"`
	FileKind   ArtifactKind `json:"file_kind"`
	StorageKey string       `json:"storage_key"`
}

// AnalysisSummary is the normalized per-repository record derived from one
// ResultIndexItem. FileSize is the byte size of whichever artifact kind the
// index carried for this repository.
type AnalysisSummary struct {
	Nwo         string             `json:"nwo"`
	ResultCount int                `json:"result_count"`
	FileSize    int64              `json:"file_size"`
	Download    DownloadDescriptor `json:"download"`
}

// QueryResultSummary aggregates the normalized records for one run, in the
// result index's original order. It is created once, when the terminal
// outcome is observed, and never mutated afterwards.
type QueryResultSummary struct {
	CompletedAt time.Time         `json:"completed_at"`
	Summaries   []AnalysisSummary `json:"summaries"`
}

// DownloadRequest is the admission-filtered, fetch-ready form of an
// AnalysisSummary. It is ephemeral: built for one download pass, never
// persisted.
type DownloadRequest struct {
	Nwo             string
	ResultCount     int
	Download        DownloadDescriptor
	FileSizeDisplay string // exact decimal byte count, for progress display
}

// AnalysisResult is one downloaded artifact, handed to the presentation
// layer once the fetch engine has written it to disk.
type AnalysisResult struct {
	Nwo         string
	ResultCount int
	FileKind    ArtifactKind
	FilePath    string
}
