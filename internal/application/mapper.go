package application

import (
	"strconv"
	"strings"
	"time"

	"varafleet/internal/domain/model"
)

// MapResultIndex normalizes a raw result index into a QueryResultSummary.
// It is a pure, order-preserving transform: summaries come out in the
// index's original order, one per entry. The artifact kind is SARIF when the
// entry carries a nonzero SARIF size, BQRS otherwise. completedAt is the
// wall-clock time at which the caller observed the terminal outcome, recorded
// before this function runs.
func MapResultIndex(index model.ResultIndex, storageKey string, completedAt time.Time) model.QueryResultSummary {
	summaries := make([]model.AnalysisSummary, 0, len(index.Successes))

	for _, item := range index.Successes {
		size := item.BqrsFileSize
		kind := model.ArtifactKindBqrs
		if item.SarifFileSize > 0 {
			size = item.SarifFileSize
			kind = model.ArtifactKindSarif
		}

		summaries = append(summaries, model.AnalysisSummary{
			Nwo:         item.Nwo,
			ResultCount: item.ResultCount,
			FileSize:    size,
			Download: model.DownloadDescriptor{
				ArtifactID: item.ArtifactID,
				FetchPath:  joinArtifactPath(index.ArtifactsBasePath, item.ArtifactID),
				FileKind:   kind,
				StorageKey: storageKey,
			},
		})
	}

	return model.QueryResultSummary{
		CompletedAt: completedAt,
		Summaries:   summaries,
	}
}

// joinArtifactPath appends an artifact id to the index's base path. The base
// may be a full URL, so plain string joining is used instead of path.Join,
// which would collapse the scheme's double slash.
func joinArtifactPath(basePath string, artifactID int64) string {
	return strings.TrimSuffix(basePath, "/") + "/" + strconv.FormatInt(artifactID, 10)
}
