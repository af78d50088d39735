package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tbenoit3/workflow-vigil/internal/eval"
	"github.com/tbenoit3/workflow-vigil/internal/run"
	"golang.org/x/sync/semaphore"
)

// Config holds GitHub adapter configuration
type Config struct {
	// BaseURL is the API root, e.g. https://api.github.com.
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxConcurrency int64
}

// DefaultConfig returns default configuration for the given credential
func DefaultConfig(token string) Config {
	return Config{
		BaseURL:        "https://api.github.com",
		Token:          token,
		Timeout:        10 * time.Second,
		MaxConcurrency: 10,
	}
}

// Adapter lists workflow run history from the GitHub Actions API.
// It performs a single page fetch per query and never retries: a check
// invocation is one-shot, and retry policy belongs to whoever reruns it.
type Adapter struct {
	config Config
	client *http.Client
	sem    *semaphore.Weighted
}

// NewAdapter creates a new GitHub adapter
func NewAdapter(config Config) *Adapter {
	return &Adapter{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		sem: semaphore.NewWeighted(config.MaxConcurrency),
	}
}

// ListRuns implements the eval.RunProvider interface. Runs are returned
// most-recent-first; the API already orders by recency, but the order is
// enforced locally so the contract does not rest on remote behavior.
func (a *Adapter) ListRuns(ctx context.Context, q eval.RunQuery) ([]run.Run, error) {
	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	if err := a.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("semaphore acquire: %w", err)
	}
	defer a.sem.Release(1)

	resp, err := a.fetchRuns(ctx, q)
	if err != nil {
		return nil, err
	}

	runs := make([]run.Run, 0, len(resp.WorkflowRuns))
	for _, wr := range resp.WorkflowRuns {
		runs = append(runs, wr.toRun())
	}

	run.SortMostRecentFirst(runs)
	return runs, nil
}

// fetchRuns performs a single workflow-runs list request
func (a *Adapter) fetchRuns(ctx context.Context, q eval.RunQuery) (*workflowRunsResponse, error) {
	listURL := fmt.Sprintf("%s/repos/%s/%s/actions/workflows/%s/runs",
		strings.TrimSuffix(a.config.BaseURL, "/"),
		url.PathEscape(q.Owner),
		url.PathEscape(q.Repo),
		url.PathEscape(q.Workflow),
	)

	params := url.Values{}
	params.Add("branch", q.Branch)
	params.Add("per_page", strconv.Itoa(q.PerPage))

	fullURL := listURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+a.config.Token)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, string(body))
	}

	var result workflowRunsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &result, nil
}
