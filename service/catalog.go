package service

import (
	"context"

	"githubglimpse/fetcher"
	"githubglimpse/models"
)

// CatalogStore abstracts the database operations needed by the catalog
// (for testability)
type CatalogStore interface {
	StoreProject(ctx context.Context, project models.Project) error
	GetProject(ctx context.Context, name string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	DeleteProject(ctx context.Context, name string) error
	Ping(ctx context.Context) error
}

// catalog joins the store and the GitHub client behind server.Catalog.
type catalog struct {
	store      CatalogStore
	client     fetcher.GitHubClientInterface
	issueLimit int
}

func newCatalog(store CatalogStore, client fetcher.GitHubClientInterface, issueLimit int) *catalog {
	return &catalog{store: store, client: client, issueLimit: issueLimit}
}

func (c *catalog) ListProjects(ctx context.Context) ([]models.Project, error) {
	return c.store.ListProjects(ctx)
}

func (c *catalog) GetProject(ctx context.Context, name string) (*models.Project, error) {
	return c.store.GetProject(ctx, name)
}

// RemoveRepository drops a project from the catalog. The monitor stops
// refreshing it on its next tick.
func (c *catalog) RemoveRepository(ctx context.Context, name string) error {
	return c.store.DeleteProject(ctx, name)
}

// AddRepository fetches the repository behind rawURL and stores it.
func (c *catalog) AddRepository(ctx context.Context, rawURL string) (models.Project, error) {
	return fetcher.FetchAndStore(ctx, c.store, c.client, rawURL, c.issueLimit)
}

// Refresh refetches a stored project by its owner/repo name.
func (c *catalog) Refresh(ctx context.Context, name string) error {
	_, err := fetcher.FetchAndStore(ctx, c.store, c.client, name, c.issueLimit)
	return err
}

func (c *catalog) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}
