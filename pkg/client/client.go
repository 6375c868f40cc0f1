package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/kurihiro0119/repo-analyzer/internal/domain"
	apperrors "github.com/kurihiro0119/repo-analyzer/internal/errors"
	"github.com/kurihiro0119/repo-analyzer/internal/safe"
)

// Client is the API client for the repository analysis service.
// Requests carry no timeout of their own; callers bound them with the context.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Analyze retrieves repository metadata, languages and top contributors
func (c *Client) Analyze(ctx context.Context, repo string) (*domain.Analysis, error) {
	var response domain.Analysis
	if err := c.get(ctx, "/analyze", repo, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Tree retrieves the directory tree
func (c *Client) Tree(ctx context.Context, repo string) ([]domain.DirectoryNode, error) {
	var response domain.Tree
	if err := c.get(ctx, "/tree", repo, &response); err != nil {
		return nil, err
	}
	return response.Tree, nil
}

// Activity retrieves weekly commit counts
func (c *Client) Activity(ctx context.Context, repo string) ([]domain.ActivityPoint, error) {
	var response domain.Activity
	if err := c.get(ctx, "/activity", repo, &response); err != nil {
		return nil, err
	}
	return response.Activity, nil
}

// Coverage retrieves the detected test coverage
func (c *Client) Coverage(ctx context.Context, repo string) (*domain.Coverage, error) {
	var response domain.Coverage
	if err := c.get(ctx, "/coverage", repo, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Stats retrieves extended repository statistics
func (c *Client) Stats(ctx context.Context, repo string) (*domain.RepositoryStats, error) {
	var response domain.RepositoryStats
	if err := c.get(ctx, "/stats", repo, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Issues retrieves issue statistics and recent issues
func (c *Client) Issues(ctx context.Context, repo string) (*domain.IssueReport, error) {
	var response domain.IssueReport
	if err := c.get(ctx, "/issues", repo, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// PullRequests retrieves pull request statistics and recent pull requests
func (c *Client) PullRequests(ctx context.Context, repo string) (*domain.PullRequestReport, error) {
	var response domain.PullRequestReport
	if err := c.get(ctx, "/pull-requests", repo, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Releases retrieves the latest releases
func (c *Client) Releases(ctx context.Context, repo string) ([]domain.Release, error) {
	var response domain.Releases
	if err := c.get(ctx, "/releases", repo, &response); err != nil {
		return nil, err
	}
	return response.Releases, nil
}

// Dependencies retrieves dependency manifests keyed by file name
func (c *Client) Dependencies(ctx context.Context, repo string) (domain.Dependencies, error) {
	var response domain.Dependencies
	if err := c.get(ctx, "/dependencies", repo, &response); err != nil {
		return nil, err
	}
	return response, nil
}

// Topics retrieves the repository topics
func (c *Client) Topics(ctx context.Context, repo string) ([]string, error) {
	var response domain.Topics
	if err := c.get(ctx, "/topics", repo, &response); err != nil {
		return nil, err
	}
	return response.Topics, nil
}

// HealthCheck checks if the API is healthy
func (c *Client) HealthCheck(ctx context.Context) error {
	var response struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/health", "", &response); err != nil {
		return err
	}
	if response.Status != "ok" {
		return fmt.Errorf("unhealthy status: %s", response.Status)
	}
	return nil
}

// errorBody is the shape of error responses
type errorBody struct {
	Error *string `json:"error"`
}

func (c *Client) get(ctx context.Context, path, repo string, result interface{}) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return apperrors.NewInternalError("invalid analysis service URL", err)
	}
	if repo != "" {
		u.RawQuery = url.Values{"repo": {repo}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return apperrors.NewInternalError("failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return apperrors.NewTimeoutError(err)
		}
		return &apperrors.AppError{Code: apperrors.ErrCodeUpstream, Message: err.Error(), Err: err}
	}
	defer safe.Close(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return apperrors.NewTimeoutError(err)
		}
		return &apperrors.AppError{Code: apperrors.ErrCodeUpstream, Message: err.Error(), Err: err}
	}

	// An "error" field wins regardless of status
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var eb errorBody
		if json.Unmarshal(trimmed, &eb) == nil && eb.Error != nil && *eb.Error != "" {
			return apperrors.NewUpstreamError(*eb.Error)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.NewUpstreamError(fmt.Sprintf("API error: %s", resp.Status))
	}

	if err := json.Unmarshal(trimmed, result); err != nil {
		return &apperrors.AppError{Code: apperrors.ErrCodeUpstream, Message: "invalid response from analysis service", Err: err}
	}
	return nil
}
