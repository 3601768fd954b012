package model

import "time"

// QuerySubmission describes one query to run against a fleet of repositories.
// The query pack is an opaque bundle handed to the variant-analysis API as-is.
type QuerySubmission struct {
	Name           string
	Language       string
	ControllerRepo string // "owner/repo" hosting the analysis runs
	Repositories   []string
	QueryPack      []byte
}

// VariantJob identifies one submitted variant-analysis run. It is immutable
// once submitted; only StorageKey is assigned later, when monitoring begins.
type VariantJob struct {
	Name           string    `json:"name"`
	Language       string    `json:"language"`
	ControllerRepo string    `json:"controller_repo"`
	Repositories   []string  `json:"repositories"`
	AnalysisID     int64     `json:"analysis_id"` // server-assigned, used for polling
	SubmittedAt    time.Time `json:"submitted_at"`
	StorageKey     string    `json:"storage_key,omitempty"`
}
