// Package fetcher turns a GitHub repository URL into a stored project.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"githubglimpse/github"
	"githubglimpse/logger"
	"githubglimpse/models"
)

// ErrInvalidRepoURL is returned for anything that does not name a GitHub repository.
var ErrInvalidRepoURL = errors.New("invalid GitHub repository URL")

// ProjectStore defines the database operations needed by the fetcher
type ProjectStore interface {
	StoreProject(ctx context.Context, project models.Project) error
}

// GitHubClientInterface defines the GitHub client operations needed by the fetcher
type GitHubClientInterface interface {
	FetchRepo(ctx context.Context, owner, name string) (*github.RepoResponse, error)
	FetchLanguages(ctx context.Context, owner, name string) (map[string]int64, error)
	FetchIssues(ctx context.Context, owner, name string, limit int) ([]github.IssueResponse, error)
}

// ParseRepoURL extracts owner and repository name from
// https://github.com/owner/repo[.git][/...] or the owner/repo shorthand.
func ParseRepoURL(raw string) (owner, name string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", fmt.Errorf("%w: empty URL", ErrInvalidRepoURL)
	}

	path := raw
	if strings.Contains(raw, "github.com") {
		if !strings.Contains(raw, "://") {
			raw = "https://" + raw
		}
		u, perr := url.Parse(raw)
		if perr != nil {
			return "", "", fmt.Errorf("%w: %v", ErrInvalidRepoURL, perr)
		}
		host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
		if host != "github.com" || (u.Scheme != "http" && u.Scheme != "https") {
			return "", "", fmt.Errorf("%w: %s is not a github.com URL", ErrInvalidRepoURL, raw)
		}
		path = u.Path
	} else if strings.Contains(raw, "://") {
		return "", "", fmt.Errorf("%w: %s is not a github.com URL", ErrInvalidRepoURL, raw)
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("%w: %s does not name owner/repo", ErrInvalidRepoURL, raw)
	}

	owner = parts[0]
	name = strings.TrimSuffix(parts[1], ".git")
	if owner == "" || name == "" {
		return "", "", fmt.Errorf("%w: %s does not name owner/repo", ErrInvalidRepoURL, raw)
	}
	return owner, name, nil
}

// FetchProject fetches repository metadata, languages and open issues
// concurrently and composes them into a project.
func FetchProject(ctx context.Context, client GitHubClientInterface, owner, name string, issueLimit int) (models.Project, error) {
	var (
		repo      *github.RepoResponse
		languages map[string]int64
		issues    []github.IssueResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		repo, err = client.FetchRepo(gctx, owner, name)
		if err != nil {
			return fmt.Errorf("failed to fetch repository: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		languages, err = client.FetchLanguages(gctx, owner, name)
		if err != nil {
			return fmt.Errorf("failed to fetch languages: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		issues, err = client.FetchIssues(gctx, owner, name, issueLimit)
		if err != nil {
			return fmt.Errorf("failed to fetch issues: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.Project{}, err
	}

	return composeProject(owner, name, repo, languages, issues), nil
}

func composeProject(owner, name string, repo *github.RepoResponse, languages map[string]int64, issues []github.IssueResponse) models.Project {
	project := models.Project{
		Name:         repo.FullName,
		Description:  repo.Description,
		URL:          repo.HTMLURL,
		Stars:        models.IntPtr(repo.StargazersCount),
		LastActivity: lastActivity(repo),
		Languages:    languages,
		Issues:       make([]models.Issue, 0, len(issues)),
		IssuesCount:  repo.OpenIssuesCount,
	}
	if project.Name == "" {
		project.Name = owner + "/" + name
	}
	if project.URL == "" {
		project.URL = "https://github.com/" + owner + "/" + name
	}
	if project.Languages == nil {
		project.Languages = map[string]int64{}
	}

	for _, issue := range issues {
		project.Issues = append(project.Issues, models.Issue{
			URL:          issue.HTMLURL,
			Number:       issue.Number,
			Title:        issue.Title,
			Labels:       issue.LabelNames(),
			CommentCount: issue.Comments,
		})
	}
	return project
}

// lastActivity prefers the last push and falls back to the last update.
func lastActivity(repo *github.RepoResponse) string {
	switch {
	case !repo.PushedAt.IsZero():
		return repo.PushedAt.UTC().Format(time.RFC3339)
	case !repo.UpdatedAt.IsZero():
		return repo.UpdatedAt.UTC().Format(time.RFC3339)
	default:
		return ""
	}
}

// FetchAndStore resolves rawURL, fetches the project and stores it in the database
func FetchAndStore(ctx context.Context, store ProjectStore, client GitHubClientInterface, rawURL string, issueLimit int) (models.Project, error) {
	owner, name, err := ParseRepoURL(rawURL)
	if err != nil {
		return models.Project{}, err
	}

	project, err := FetchProject(ctx, client, owner, name, issueLimit)
	if err != nil {
		return models.Project{}, err
	}

	if err := store.StoreProject(ctx, project); err != nil {
		return models.Project{}, fmt.Errorf("failed to store project: %w", err)
	}

	logger.Info("Project fetched and stored",
		zap.String("name", project.Name),
		zap.Int("issues", len(project.Issues)))
	return project, nil
}
