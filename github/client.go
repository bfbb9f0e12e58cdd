package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"githubglimpse/logger"
)

// DefaultBaseURL is the public GitHub REST API.
const DefaultBaseURL = "https://api.github.com"

// maxPerPage is GitHub's maximum page size.
const maxPerPage = 100

// ErrNotFound is returned when GitHub answers 404 for a resource.
var ErrNotFound = errors.New("not found on GitHub")

// RateLimit represents GitHub's rate limit information
type RateLimit struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// StatusError is returned for any unexpected non-200 response.
type StatusError struct {
	StatusCode int
	Resource   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch %s: status code %d", e.Resource, e.StatusCode)
}

// Unwrap lets errors.Is match ErrNotFound on 404 responses.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// Client represents a GitHub API client
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    *url.URL
	// maxRateWait caps how long a request waits for a rate limit reset.
	maxRateWait time.Duration
}

// RepoResponse holds the repository fields a project is built from.
type RepoResponse struct {
	FullName        string    `json:"full_name"`
	Description     string    `json:"description"`
	HTMLURL         string    `json:"html_url"`
	Language        string    `json:"language"`
	StargazersCount int       `json:"stargazers_count"`
	OpenIssuesCount int       `json:"open_issues_count"`
	PushedAt        time.Time `json:"pushed_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IssueResponse is an entry of the issues listing. Pull requests come back
// from the same endpoint and carry a pull_request object.
type IssueResponse struct {
	HTMLURL     string          `json:"html_url"`
	Number      int             `json:"number"`
	Title       string          `json:"title"`
	Comments    int             `json:"comments"`
	Labels      []LabelResponse `json:"labels"`
	PullRequest *struct {
		URL string `json:"url"`
	} `json:"pull_request,omitempty"`
}

// LabelResponse is an issue label.
type LabelResponse struct {
	Name string `json:"name"`
}

// IsPullRequest reports whether the entry is a pull request.
func (i IssueResponse) IsPullRequest() bool {
	return i.PullRequest != nil
}

// LabelNames flattens the labels to their names.
func (i IssueResponse) LabelNames() []string {
	names := make([]string, 0, len(i.Labels))
	for _, l := range i.Labels {
		names = append(names, l.Name)
	}
	return names
}

// NewClient returns a client for the public API. timeout bounds every request;
// zero means 30 seconds.
func NewClient(token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	baseURL, _ := url.Parse(DefaultBaseURL)
	logger.Info("Initializing GitHub client", zap.String("base_url", baseURL.String()))
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     baseURL,
		maxRateWait: 15 * time.Minute,
	}
}

// SetBaseURL points the client at another API root, e.g. GitHub Enterprise.
func (c *Client) SetBaseURL(raw string) error {
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid GitHub base URL %q", raw)
	}
	c.baseURL = u
	return nil
}

// FetchRepo fetches repository metadata.
func (c *Client) FetchRepo(ctx context.Context, owner, name string) (*RepoResponse, error) {
	path := fmt.Sprintf("/repos/%s/%s", owner, name)

	var repo RepoResponse
	if _, err := c.get(ctx, "repository", path, nil, &repo); err != nil {
		logger.Error("Failed to fetch repository",
			zap.Error(err),
			zap.String("owner", owner),
			zap.String("name", name))
		return nil, err
	}

	logger.Info("Successfully fetched repository",
		zap.String("owner", owner),
		zap.String("name", name),
		zap.String("language", repo.Language),
		zap.Int("stars", repo.StargazersCount))

	return &repo, nil
}

// FetchLanguages returns the language breakdown in bytes of code.
func (c *Client) FetchLanguages(ctx context.Context, owner, name string) (map[string]int64, error) {
	path := fmt.Sprintf("/repos/%s/%s/languages", owner, name)

	languages := map[string]int64{}
	if _, err := c.get(ctx, "languages", path, nil, &languages); err != nil {
		logger.Error("Failed to fetch languages",
			zap.Error(err),
			zap.String("owner", owner),
			zap.String("name", name))
		return nil, err
	}

	logger.Debug("Fetched languages",
		zap.String("owner", owner),
		zap.String("name", name),
		zap.Int("count", len(languages)))
	return languages, nil
}

// FetchIssues fetches up to limit open issues, skipping pull requests.
func (c *Client) FetchIssues(ctx context.Context, owner, name string, limit int) ([]IssueResponse, error) {
	issues := []IssueResponse{}
	if limit <= 0 {
		return issues, nil
	}

	perPage := limit
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	path := fmt.Sprintf("/repos/%s/%s/issues", owner, name)

	for page := 1; len(issues) < limit; page++ {
		q := url.Values{}
		q.Set("state", "open")
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(perPage))

		logger.Debug("Fetching issues page",
			zap.String("owner", owner),
			zap.String("name", name),
			zap.Int("page", page))

		var batch []IssueResponse
		header, err := c.get(ctx, "issues", path, q, &batch)
		if err != nil {
			logger.Error("Failed to fetch issues",
				zap.Error(err),
				zap.String("owner", owner),
				zap.String("name", name))
			return nil, err
		}

		for _, issue := range batch {
			if issue.IsPullRequest() {
				continue
			}
			issues = append(issues, issue)
			if len(issues) == limit {
				break
			}
		}

		if len(batch) < perPage || !containsNextPage(header.Get("Link")) {
			break
		}
	}

	logger.Info("Successfully fetched issues",
		zap.String("owner", owner),
		zap.String("name", name),
		zap.Int("total_count", len(issues)))
	return issues, nil
}

// get performs an authenticated GET and decodes the JSON body into out. A
// rate limited request is retried once after the reset time.
func (c *Client) get(ctx context.Context, resource, path string, query url.Values, out any) (http.Header, error) {
	reqURL := *c.baseURL
	reqURL.Path = strings.TrimRight(c.baseURL.Path, "/") + path
	reqURL.RawQuery = query.Encode()

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		if c.token != "" {
			req.Header.Set("Authorization", fmt.Sprintf("token %s", c.token))
		}
		req.Header.Set("Accept", "application/vnd.github.v3+json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", resource, err)
		}

		if attempt == 0 && isRateLimited(resp) {
			resp.Body.Close()
			if err := c.waitForReset(ctx, resp); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, &StatusError{StatusCode: resp.StatusCode, Resource: resource}
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s response: %w", resource, err)
		}
		return resp.Header, nil
	}
}

// parseRateLimit parses rate limit information from response headers
func parseRateLimit(resp *http.Response) RateLimit {
	limit, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit"))
	remaining, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining"))
	reset, _ := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)

	return RateLimit{
		Limit:     limit,
		Remaining: remaining,
		Reset:     time.Unix(reset, 0),
	}
}

func isRateLimited(resp *http.Response) bool {
	return (resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests) &&
		resp.Header.Get("X-RateLimit-Remaining") == "0"
}

// waitForReset blocks until the rate limit resets or ctx is done.
func (c *Client) waitForReset(ctx context.Context, resp *http.Response) error {
	rl := parseRateLimit(resp)
	waitTime := time.Until(rl.Reset)
	if waitTime < 0 {
		waitTime = 0
	}
	if waitTime > c.maxRateWait {
		return fmt.Errorf("rate limit exceeded, resets at %s", rl.Reset.Format(time.RFC3339))
	}

	logger.Info("Rate limit exceeded, waiting for reset",
		zap.Int("limit", rl.Limit),
		zap.Time("reset_time", rl.Reset),
		zap.Duration("wait_time", waitTime))

	timer := time.NewTimer(waitTime)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// containsNextPage checks if the Link header advertises a next page
func containsNextPage(linkHeader string) bool {
	return strings.Contains(linkHeader, `rel="next"`)
}
