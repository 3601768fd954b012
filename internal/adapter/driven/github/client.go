// Package github implements the VariantAnalysisClient port using the
// go-github library.
package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"varafleet/internal/domain/model"
	"varafleet/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.VariantAnalysisClient = (*Client)(nil)

// Client implements the driven.VariantAnalysisClient port. The CodeQL
// variant-analysis endpoints have no typed service in go-github, so requests
// go through the library's NewRequest/Do plumbing directly. Credentials are
// supplied per call rather than bound at construction, so one client serves
// whatever token the credential provider currently holds.
type Client struct {
	gh *gh.Client
}

// NewClient creates a variant-analysis API client with the following
// transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client)
func NewClient() *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	return &Client{gh: gh.NewClient(rateLimitClient)}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base
// URL. This constructor is intended for testing, allowing injection of an
// httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// submissionBody is the JSON body for creating a variant analysis.
type submissionBody struct {
	Language     string   `json:"language"`
	QueryPack    string   `json:"query_pack"` // base64-encoded bundle
	Repositories []string `json:"repositories"`
}

// analysisResponse is the shape returned when creating or fetching a
// variant analysis.
type analysisResponse struct {
	ID            int64  `json:"id"`
	Status        string `json:"status"`
	FailureReason string `json:"failure_reason"`
	CreatedAt     string `json:"created_at"`
}

// SubmitAnalysis submits a query pack for analysis across the fleet of
// repositories in sub. A 422 from the platform means the submission was
// rejected as invalid; per the port contract that returns (nil, nil).
func (c *Client) SubmitAnalysis(ctx context.Context, creds model.Credentials, sub model.QuerySubmission) (*model.VariantJob, error) {
	u := fmt.Sprintf("repos/%s/code-scanning/codeql/variant-analyses", sub.ControllerRepo)

	body := submissionBody{
		Language:     sub.Language,
		QueryPack:    base64.StdEncoding.EncodeToString(sub.QueryPack),
		Repositories: sub.Repositories,
	}

	req, err := c.gh.NewRequest(http.MethodPost, u, body)
	if err != nil {
		return nil, fmt.Errorf("building submission request: %w", err)
	}
	authorize(req, creds)

	var created analysisResponse
	resp, err := c.gh.Do(ctx, req, &created)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnprocessableEntity {
			slog.Warn("variant analysis submission rejected",
				"name", sub.Name,
				"controller", sub.ControllerRepo,
			)
			return nil, nil
		}
		return nil, fmt.Errorf("submitting variant analysis to %s: %w", sub.ControllerRepo, err)
	}

	logRateLimit(resp, "variant-analyses:create")

	return &model.VariantJob{
		Name:           sub.Name,
		Language:       sub.Language,
		ControllerRepo: sub.ControllerRepo,
		Repositories:   sub.Repositories,
		AnalysisID:     created.ID,
		SubmittedAt:    time.Now().UTC(),
	}, nil
}

// GetAnalysisStatus fetches the run's current status and maps it onto the
// JobOutcome variants.
func (c *Client) GetAnalysisStatus(ctx context.Context, creds model.Credentials, job model.VariantJob) (model.JobOutcome, error) {
	u := fmt.Sprintf("repos/%s/code-scanning/codeql/variant-analyses/%d", job.ControllerRepo, job.AnalysisID)

	req, err := c.gh.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building status request: %w", err)
	}
	authorize(req, creds)

	var analysis analysisResponse
	resp, err := c.gh.Do(ctx, req, &analysis)
	if err != nil {
		return nil, fmt.Errorf("fetching status of analysis %d: %w", job.AnalysisID, err)
	}

	logRateLimit(resp, "variant-analyses:status")

	switch analysis.Status {
	case "in_progress":
		return model.OutcomeInProgress{}, nil
	case "succeeded":
		return model.OutcomeSucceeded{}, nil
	case "failed":
		return model.OutcomeFailed{Reason: analysis.FailureReason}, nil
	case "cancelled":
		return model.OutcomeCanceled{}, nil
	default:
		return nil, fmt.Errorf("analysis %d reported unknown status %q", job.AnalysisID, analysis.Status)
	}
}

// FetchResultIndex retrieves the per-repository artifact manifest for a
// succeeded run. A 404 means the platform has no index for the run, which
// maps to (nil, nil) per the port contract.
func (c *Client) FetchResultIndex(ctx context.Context, creds model.Credentials, job model.VariantJob) (*model.ResultIndex, error) {
	u := fmt.Sprintf("repos/%s/code-scanning/codeql/variant-analyses/%d/result-index", job.ControllerRepo, job.AnalysisID)

	req, err := c.gh.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building result index request: %w", err)
	}
	authorize(req, creds)

	var index model.ResultIndex
	resp, err := c.gh.Do(ctx, req, &index)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching result index of analysis %d: %w", job.AnalysisID, err)
	}

	logRateLimit(resp, "variant-analyses:result-index")

	return &index, nil
}

// authorize sets the per-request bearer token.
func authorize(req *http.Request, creds model.Credentials) {
	if creds.Token != "" {
		req.Header.Set("Authorization", "Bearer "+creds.Token)
	}
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining > 0 && resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
