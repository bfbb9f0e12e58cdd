package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"githubglimpse/config"
	"githubglimpse/db"
	"githubglimpse/fetcher"
	"githubglimpse/github"
	"githubglimpse/models"
)

// MockDB is a mock implementation of the catalog store
type MockDB struct {
	mock.Mock
}

func (m *MockDB) StoreProject(ctx context.Context, project models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockDB) ListProjects(ctx context.Context) ([]models.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *MockDB) GetProject(ctx context.Context, name string) (*models.Project, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockDB) DeleteProject(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockDB) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockGitHubClient is a mock implementation of the GitHub client
type MockGitHubClient struct {
	mock.Mock
}

func (m *MockGitHubClient) FetchRepo(ctx context.Context, owner, name string) (*github.RepoResponse, error) {
	args := m.Called(ctx, owner, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.RepoResponse), args.Error(1)
}

func (m *MockGitHubClient) FetchLanguages(ctx context.Context, owner, name string) (map[string]int64, error) {
	args := m.Called(ctx, owner, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockGitHubClient) FetchIssues(ctx context.Context, owner, name string, limit int) ([]github.IssueResponse, error) {
	args := m.Called(ctx, owner, name, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]github.IssueResponse), args.Error(1)
}

// MockAdder records seeded repositories
type MockAdder struct {
	mock.Mock
}

func (m *MockAdder) AddRepository(ctx context.Context, rawURL string) (models.Project, error) {
	args := m.Called(ctx, rawURL)
	return args.Get(0).(models.Project), args.Error(1)
}

func expectFetch(client *MockGitHubClient, owner, name string, limit int) {
	client.On("FetchRepo", mock.Anything, owner, name).Return(&github.RepoResponse{
		FullName:        owner + "/" + name,
		HTMLURL:         "https://github.com/" + owner + "/" + name,
		StargazersCount: 42,
		OpenIssuesCount: 1,
		PushedAt:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}, nil)
	client.On("FetchLanguages", mock.Anything, owner, name).Return(map[string]int64{"Go": 10}, nil)
	client.On("FetchIssues", mock.Anything, owner, name, limit).Return([]github.IssueResponse{}, nil)
}

func TestCatalogAddRepository(t *testing.T) {
	testCases := []struct {
		name          string
		rawURL        string
		setupMocks    func(*MockDB, *MockGitHubClient)
		expectedError error
		wantErr       bool
	}{
		{
			name:   "successful processing",
			rawURL: "https://github.com/test-owner/test-repo",
			setupMocks: func(store *MockDB, client *MockGitHubClient) {
				expectFetch(client, "test-owner", "test-repo", 20)
				store.On("StoreProject", mock.Anything, mock.MatchedBy(func(p models.Project) bool {
					return p.Name == "test-owner/test-repo" && p.StarCount() == 42 && p.LastActivity == "2024-06-01T00:00:00Z"
				})).Return(nil)
			},
		},
		{
			name:          "invalid url",
			rawURL:        "https://example.com/test-owner/test-repo",
			setupMocks:    func(*MockDB, *MockGitHubClient) {},
			expectedError: fetcher.ErrInvalidRepoURL,
		},
		{
			name:   "github error",
			rawURL: "test-owner/missing",
			setupMocks: func(store *MockDB, client *MockGitHubClient) {
				client.On("FetchRepo", mock.Anything, "test-owner", "missing").Return(nil, github.ErrNotFound)
				client.On("FetchLanguages", mock.Anything, "test-owner", "missing").Return(nil, github.ErrNotFound).Maybe()
				client.On("FetchIssues", mock.Anything, "test-owner", "missing", 20).Return(nil, github.ErrNotFound).Maybe()
			},
			expectedError: github.ErrNotFound,
		},
		{
			name:   "database error",
			rawURL: "test-owner/test-repo",
			setupMocks: func(store *MockDB, client *MockGitHubClient) {
				expectFetch(client, "test-owner", "test-repo", 20)
				store.On("StoreProject", mock.Anything, mock.Anything).Return(errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockDB := new(MockDB)
			mockClient := new(MockGitHubClient)
			tc.setupMocks(mockDB, mockClient)

			cat := newCatalog(mockDB, mockClient, 20)
			_, err := cat.AddRepository(context.Background(), tc.rawURL)

			switch {
			case tc.expectedError != nil:
				assert.ErrorIs(t, err, tc.expectedError)
			case tc.wantErr:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
			mockDB.AssertExpectations(t)
			mockClient.AssertExpectations(t)
		})
	}
}

func TestCatalogRefreshUsesStoredName(t *testing.T) {
	mockDB := new(MockDB)
	mockClient := new(MockGitHubClient)
	expectFetch(mockClient, "golang", "go", 5)
	mockDB.On("StoreProject", mock.Anything, mock.Anything).Return(nil)

	err := newCatalog(mockDB, mockClient, 5).Refresh(context.Background(), "golang/go")

	assert.NoError(t, err)
	mockClient.AssertExpectations(t)
}

func TestCatalogDelegates(t *testing.T) {
	mockDB := new(MockDB)
	mockDB.On("ListProjects", mock.Anything).Return([]models.Project{{Name: "a/b"}}, nil)
	mockDB.On("Ping", mock.Anything).Return(nil)
	cat := newCatalog(mockDB, new(MockGitHubClient), 5)

	projects, err := cat.ListProjects(context.Background())
	require.NoError(t, err)
	assert.Len(t, projects, 1)
	assert.NoError(t, cat.Ping(context.Background()))
}

func TestCatalogGetAndRemove(t *testing.T) {
	mockDB := new(MockDB)
	mockDB.On("GetProject", mock.Anything, "a/b").Return(&models.Project{Name: "a/b"}, nil)
	mockDB.On("GetProject", mock.Anything, "x/y").Return(nil, db.ErrProjectNotFound)
	mockDB.On("DeleteProject", mock.Anything, "a/b").Return(nil)
	mockDB.On("DeleteProject", mock.Anything, "x/y").Return(db.ErrProjectNotFound)
	cat := newCatalog(mockDB, new(MockGitHubClient), 5)

	project, err := cat.GetProject(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "a/b", project.Name)

	_, err = cat.GetProject(context.Background(), "x/y")
	assert.ErrorIs(t, err, db.ErrProjectNotFound)

	assert.NoError(t, cat.RemoveRepository(context.Background(), "a/b"))
	assert.ErrorIs(t, cat.RemoveRepository(context.Background(), "x/y"), db.ErrProjectNotFound)
	mockDB.AssertExpectations(t)
}

func TestSeedRepositories(t *testing.T) {
	adder := new(MockAdder)
	adder.On("AddRepository", mock.Anything, "golang/go").Return(models.Project{Name: "golang/go"}, nil)
	adder.On("AddRepository", mock.Anything, "bad").Return(models.Project{}, fetcher.ErrInvalidRepoURL)
	adder.On("AddRepository", mock.Anything, "spf13/cobra").Return(models.Project{Name: "spf13/cobra"}, nil)

	stored := seedRepositories(context.Background(), adder, []string{"golang/go", "bad", "spf13/cobra"})

	assert.Equal(t, 2, stored)
	adder.AssertExpectations(t)
}

func TestSeedRepositoriesStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	adder := new(MockAdder)

	assert.Zero(t, seedRepositories(ctx, adder, []string{"golang/go"}))
	adder.AssertNotCalled(t, "AddRepository", mock.Anything, mock.Anything)
}

func TestNewServiceRequiresToken(t *testing.T) {
	cfg := &config.Config{RefreshInterval: 60, DBDriver: config.DriverSQLite, SQLitePath: "unused.db"}

	_, err := NewService(cfg)

	assert.ErrorIs(t, err, ErrServiceInit)
}

func TestNewServiceWithSQLite(t *testing.T) {
	cfg := &config.Config{
		GitHubToken:     "token",
		RefreshInterval: 60,
		IssueLimit:      5,
		ListenAddr:      ":0",
		DBDriver:        config.DriverSQLite,
		SQLitePath:      filepath.Join(t.TempDir(), "glimpse.db"),
	}

	svc, err := NewService(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	projects, err := svc.catalog.ListProjects(ctx)
	assert.NoError(t, err)
	assert.Empty(t, projects)

	require.NoError(t, svc.database.StoreProject(ctx, models.Project{Name: "golang/go", Stars: models.IntPtr(1)}))
	project, err := svc.catalog.GetProject(ctx, "golang/go")
	require.NoError(t, err)
	assert.Equal(t, 1, project.StarCount())

	require.NoError(t, svc.catalog.RemoveRepository(ctx, "golang/go"))
	_, err = svc.catalog.GetProject(ctx, "golang/go")
	assert.ErrorIs(t, err, db.ErrProjectNotFound)
	assert.ErrorIs(t, svc.catalog.RemoveRepository(ctx, "golang/go"), db.ErrProjectNotFound)

	assert.NoError(t, svc.Close())
}
