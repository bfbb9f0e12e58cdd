// Package datasource talks to the GitHub Glimpse API: it lists the tracked
// projects and submits new repositories.
package datasource

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
	"time"

	"go.uber.org/zap"

	"githubglimpse/logger"
	"githubglimpse/models"
)

// ErrTransport wraps failures that never produced an HTTP response.
var ErrTransport = errors.New("data source unreachable")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("data source returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("data source returned status %d", e.StatusCode)
}

// SubmitResult is the outcome of a successful submission.
type SubmitResult struct {
	Message string
}

// Client is an HTTP client for the Data Source API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// NewClient returns a client for the API rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid data source URL %q", baseURL)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// FetchProjects retrieves the full project collection via GET /repos.
func (c *Client) FetchProjects(ctx context.Context) ([]models.Project, error) {
	resp, err := c.do(ctx, http.MethodGet, "/repos", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var projects []models.Project
	if err := json.NewDecoder(resp.Body).Decode(&projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %w", err)
	}
	if projects == nil {
		projects = []models.Project{}
	}

	logger.Info("Fetched projects", zap.Int("count", len(projects)))
	return projects, nil
}

// SubmitRepository posts rawURL verbatim to POST /add-repo.
func (c *Client) SubmitRepository(ctx context.Context, rawURL string) (SubmitResult, error) {
	body, err := json.Marshal(models.SubmitRequest{URL: rawURL})
	if err != nil {
		return SubmitResult{}, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/add-repo", body)
	if err != nil {
		return SubmitResult{}, err
	}
	defer resp.Body.Close()

	var out models.SubmitResponse
	// The body is informational only; an empty or non-JSON body still counts as success.
	if data, err := io.ReadAll(resp.Body); err == nil && len(data) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			logger.Debug("Ignoring undecodable submit response",
				zap.String("url", rawURL),
				zap.Error(err))
		}
	}

	logger.Info("Repository submitted", zap.String("url", rawURL))
	return SubmitResult{Message: out.Message}, nil
}

// do sends the request and turns transport failures and non-2xx statuses
// into errors. The caller closes the body on success.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	reqURL := *c.baseURL
	reqURL.Path = strings.TrimRight(c.baseURL.Path, "/") + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Debug("Calling data source", zap.String("method", method), zap.String("url", reqURL.String()))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("Data source request failed", zap.Error(err), zap.String("url", reqURL.String()))
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var msg models.SubmitResponse
		if data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); err == nil {
			if err := json.Unmarshal(data, &msg); err == nil {
				statusErr.Message = msg.Message
			} else {
				logger.Debug("Error response has no JSON message",
					zap.Int("status_code", resp.StatusCode),
					zap.Error(err))
			}
		}
		logger.Warn("Data source returned an error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("url", reqURL.String()))
		return nil, statusErr
	}
	return resp, nil
}
