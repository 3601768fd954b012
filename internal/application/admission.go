package application

import (
	"strconv"

	"varafleet/internal/domain/model"
)

// Default caps for the unattended auto-download pass. Entries over the caps
// stay in the persisted summary and can be fetched on demand later.
const (
	DefaultMaxAutoDownloadSize  int64 = 300 * 1024
	DefaultMaxAutoDownloadCount       = 100
)

// AdmitDownloads filters summaries down to a bounded set of download
// requests: entries whose artifact size is strictly under maxBytes, truncated
// to the first maxCount survivors, in the summaries' original order.
func AdmitDownloads(summaries []model.AnalysisSummary, maxBytes int64, maxCount int) []model.DownloadRequest {
	var requests []model.DownloadRequest

	for _, s := range summaries {
		if s.FileSize >= maxBytes {
			continue
		}
		if len(requests) >= maxCount {
			break
		}
		requests = append(requests, model.DownloadRequest{
			Nwo:             s.Nwo,
			ResultCount:     s.ResultCount,
			Download:        s.Download,
			FileSizeDisplay: strconv.FormatInt(s.FileSize, 10),
		})
	}

	return requests
}
