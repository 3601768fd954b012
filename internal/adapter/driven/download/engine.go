// Package download implements the Downloader port: a bounded-concurrency
// artifact fetch engine.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"varafleet/internal/domain/model"
	"varafleet/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Downloader = (*Engine)(nil)

// Engine fetches result artifacts over HTTP and files them under the owning
// run's storage directory. Per-target failures are logged and skipped; only
// cancellation aborts the pass. Files already written before a cancellation
// are retained.
type Engine struct {
	httpClient  *http.Client
	store       driven.ResultStore
	concurrency int
}

// NewEngine creates an Engine writing through store with at most concurrency
// simultaneous fetches.
func NewEngine(store driven.ResultStore, concurrency int) *Engine {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Engine{
		httpClient:  &http.Client{Timeout: 2 * time.Minute},
		store:       store,
		concurrency: concurrency,
	}
}

// NewEngineWithHTTPClient creates an Engine with a custom http.Client.
// Intended for testing against an httptest server.
func NewEngineWithHTTPClient(store driven.ResultStore, concurrency int, httpClient *http.Client) *Engine {
	e := NewEngine(store, concurrency)
	e.httpClient = httpClient
	return e
}

// Download fetches every requested artifact, then forwards the completed
// results through onResults. The slice handed to onResults preserves request
// order; targets that failed are simply absent from it.
func (e *Engine) Download(ctx context.Context, creds model.Credentials, requests []model.DownloadRequest, onResults driven.ResultsHandler) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	var mu sync.Mutex
	completed := make(map[int]model.AnalysisResult, len(requests))

	for i, req := range requests {
		g.Go(func() error {
			result, err := e.fetchOne(gctx, creds, req)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				slog.Error("artifact download failed",
					"nwo", req.Nwo,
					"artifact_id", req.Download.ArtifactID,
					"error", err,
				)
				return nil
			}

			mu.Lock()
			completed[i] = *result
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("download pass aborted: %w", err)
	}

	results := make([]model.AnalysisResult, 0, len(completed))
	for i := range requests {
		if result, ok := completed[i]; ok {
			results = append(results, result)
		}
	}

	slog.Info("download pass complete", "requested", len(requests), "fetched", len(results))

	if len(results) > 0 && onResults != nil {
		onResults(results)
	}

	return nil
}

// fetchOne downloads a single artifact into
// <run dir>/<owner_repo>/<file kind>.
func (e *Engine) fetchOne(ctx context.Context, creds model.Credentials, req model.DownloadRequest) (*model.AnalysisResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.Download.FetchPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", req.Nwo, err)
	}
	if creds.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+creds.Token)
	}

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch artifact for %s: %w", req.Nwo, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch artifact for %s: unexpected status %d", req.Nwo, resp.StatusCode)
	}

	dir := filepath.Join(
		e.store.RunDir(req.Download.StorageKey),
		strings.ReplaceAll(req.Nwo, "/", "_"),
	)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir %s: %w", dir, err)
	}

	dest := filepath.Join(dir, string(req.Download.FileKind))
	f, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", dest, err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(dest) // do not leave a truncated artifact behind
		return nil, fmt.Errorf("write %s: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %w", dest, err)
	}

	return &model.AnalysisResult{
		Nwo:         req.Nwo,
		ResultCount: req.ResultCount,
		FileKind:    req.Download.FileKind,
		FilePath:    dest,
	}, nil
}
