package model

// ResultIndex is the raw per-repository artifact manifest returned by the
// variant-analysis API once a run succeeds. Exactly one of the two size
// fields on each item is nonzero: repositories analyzed with an
// interpreted-results query carry a SARIF artifact, the rest carry a raw
// BQRS artifact.
type ResultIndex struct {
	ArtifactsBasePath      string            `json:"artifacts_url_path"`
	Successes              []ResultIndexItem `json:"successes"`
	SkippedRepositoryCount int               `json:"skipped_repository_count"`
}

// ResultIndexItem is one repository's entry in the result index.
type ResultIndexItem struct {
	Nwo           string `json:"nwo"` // "owner/repo"
	ArtifactID    int64  `json:"id"`
	ResultCount   int    `json:"result_count"`
	SarifFileSize int64  `json:"sarif_file_size,omitempty"`
	BqrsFileSize  int64  `json:"bqrs_file_size,omitempty"`
}
