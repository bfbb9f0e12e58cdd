package fetcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"githubglimpse/github"
	"githubglimpse/models"
)

// MockStore is a mock implementation of ProjectStore
type MockStore struct {
	mock.Mock
}

func (m *MockStore) StoreProject(ctx context.Context, project models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
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

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		raw       string
		wantOwner string
		wantName  string
		wantErr   bool
	}{
		{raw: "https://github.com/facebook/react", wantOwner: "facebook", wantName: "react"},
		{raw: "https://github.com/facebook/react.git", wantOwner: "facebook", wantName: "react"},
		{raw: "https://github.com/golang/go/issues/123", wantOwner: "golang", wantName: "go"},
		{raw: "http://www.github.com/rust-lang/rust/", wantOwner: "rust-lang", wantName: "rust"},
		{raw: "  github.com/spf13/cobra  ", wantOwner: "spf13", wantName: "cobra"},
		{raw: "spf13/viper", wantOwner: "spf13", wantName: "viper"},
		{raw: "", wantErr: true},
		{raw: "https://github.com/facebook", wantErr: true},
		{raw: "https://gitlab.com/group/project", wantErr: true},
		{raw: "https://notgithub.com/a/b", wantErr: true},
		{raw: "ftp://github.com/a/b", wantErr: true},
		{raw: "justaword", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			owner, name, err := ParseRepoURL(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRepoURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, owner)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestFetchProject(t *testing.T) {
	pushed := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	client := new(MockGitHubClient)
	client.On("FetchRepo", mock.Anything, "golang", "go").Return(&github.RepoResponse{
		FullName:        "golang/go",
		Description:     "The Go programming language",
		HTMLURL:         "https://github.com/golang/go",
		StargazersCount: 120000,
		OpenIssuesCount: 9000,
		PushedAt:        pushed,
	}, nil)
	client.On("FetchLanguages", mock.Anything, "golang", "go").Return(map[string]int64{"Go": 5000}, nil)
	client.On("FetchIssues", mock.Anything, "golang", "go", 20).Return([]github.IssueResponse{
		{
			HTMLURL:  "https://github.com/golang/go/issues/1",
			Number:   1,
			Title:    "cmd/go: flaky test",
			Comments: 3,
			Labels:   []github.LabelResponse{{Name: "NeedsInvestigation"}},
		},
	}, nil)

	project, err := FetchProject(context.Background(), client, "golang", "go", 20)

	require.NoError(t, err)
	assert.Equal(t, models.Project{
		Name:         "golang/go",
		Description:  "The Go programming language",
		URL:          "https://github.com/golang/go",
		Stars:        models.IntPtr(120000),
		LastActivity: "2024-06-01T10:00:00Z",
		Languages:    map[string]int64{"Go": 5000},
		Issues: []models.Issue{
			{URL: "https://github.com/golang/go/issues/1", Number: 1, Title: "cmd/go: flaky test", Labels: []string{"NeedsInvestigation"}, CommentCount: 3},
		},
		IssuesCount: 9000,
	}, project)
	client.AssertExpectations(t)
}

func TestFetchProjectFallbacks(t *testing.T) {
	updated := time.Date(2023, 2, 3, 4, 5, 6, 0, time.UTC)
	client := new(MockGitHubClient)
	client.On("FetchRepo", mock.Anything, "a", "b").Return(&github.RepoResponse{UpdatedAt: updated}, nil)
	client.On("FetchLanguages", mock.Anything, "a", "b").Return(nil, nil)
	client.On("FetchIssues", mock.Anything, "a", "b", 0).Return([]github.IssueResponse{}, nil)

	project, err := FetchProject(context.Background(), client, "a", "b", 0)

	require.NoError(t, err)
	assert.Equal(t, "a/b", project.Name)
	assert.Equal(t, "https://github.com/a/b", project.URL)
	assert.Equal(t, "2023-02-03T04:05:06Z", project.LastActivity)
	assert.NotNil(t, project.Languages)
	assert.NotNil(t, project.Issues)
}

func TestFetchProjectError(t *testing.T) {
	client := new(MockGitHubClient)
	client.On("FetchRepo", mock.Anything, "a", "b").Return(nil, github.ErrNotFound)
	client.On("FetchLanguages", mock.Anything, "a", "b").Return(map[string]int64{}, nil).Maybe()
	client.On("FetchIssues", mock.Anything, "a", "b", 5).Return([]github.IssueResponse{}, nil).Maybe()

	_, err := FetchProject(context.Background(), client, "a", "b", 5)

	assert.ErrorIs(t, err, github.ErrNotFound)
}

func TestFetchAndStore(t *testing.T) {
	testCases := []struct {
		name       string
		rawURL     string
		setupMocks func(*MockStore, *MockGitHubClient)
		expectErr  error
		wantErr    bool
	}{
		{
			name:   "successful fetch and store",
			rawURL: "https://github.com/spf13/cobra",
			setupMocks: func(store *MockStore, client *MockGitHubClient) {
				client.On("FetchRepo", mock.Anything, "spf13", "cobra").Return(&github.RepoResponse{FullName: "spf13/cobra"}, nil)
				client.On("FetchLanguages", mock.Anything, "spf13", "cobra").Return(map[string]int64{"Go": 1}, nil)
				client.On("FetchIssues", mock.Anything, "spf13", "cobra", 10).Return([]github.IssueResponse{}, nil)
				store.On("StoreProject", mock.Anything, mock.MatchedBy(func(p models.Project) bool {
					return p.Name == "spf13/cobra"
				})).Return(nil)
			},
		},
		{
			name:       "invalid url",
			rawURL:     "https://example.com/x",
			setupMocks: func(*MockStore, *MockGitHubClient) {},
			expectErr:  ErrInvalidRepoURL,
		},
		{
			name:   "store failure",
			rawURL: "spf13/cobra",
			setupMocks: func(store *MockStore, client *MockGitHubClient) {
				client.On("FetchRepo", mock.Anything, "spf13", "cobra").Return(&github.RepoResponse{}, nil)
				client.On("FetchLanguages", mock.Anything, "spf13", "cobra").Return(map[string]int64{}, nil)
				client.On("FetchIssues", mock.Anything, "spf13", "cobra", 10).Return([]github.IssueResponse{}, nil)
				store.On("StoreProject", mock.Anything, mock.Anything).Return(errors.New("disk full"))
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := new(MockStore)
			client := new(MockGitHubClient)
			tc.setupMocks(store, client)

			project, err := FetchAndStore(context.Background(), store, client, tc.rawURL, 10)

			switch {
			case tc.expectErr != nil:
				assert.ErrorIs(t, err, tc.expectErr)
			case tc.wantErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, "spf13/cobra", project.Name)
			}
			store.AssertExpectations(t)
			client.AssertExpectations(t)
		})
	}
}
