// Package session owns the mutable state of one browsing session: the loaded
// projects, the view parameters and the favorite set. Every method is safe
// for concurrent use.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"githubglimpse/datasource"
	"githubglimpse/favorites"
	"githubglimpse/logger"
	"githubglimpse/models"
	"githubglimpse/view"
)

// Messages shown after a submission.
const (
	SubmitSuccessMessage = "Repository added successfully!"
	SubmitFailureMessage = "Failed to add repository. Please check the URL or try again later."
)

// Session errors
var (
	ErrURLRequired     = errors.New("repository URL is required")
	ErrInvalidPageSize = errors.New("page size must be at least 1")
)

// Status is the load state of the project collection.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// DataSource abstracts the remote API (for testability)
type DataSource interface {
	FetchProjects(ctx context.Context) ([]models.Project, error)
	SubmitRepository(ctx context.Context, url string) (datasource.SubmitResult, error)
}

// Session is the single owner of the presentation state.
type Session struct {
	mu sync.RWMutex

	source DataSource
	store  favorites.Store

	projects  []models.Project
	favorites favorites.Set
	params    models.ViewParams
	status    Status
	loadErr   error
}

// New returns an idle session with default view parameters.
func New(source DataSource, store favorites.Store) *Session {
	return &Session{
		source:    source,
		store:     store,
		favorites: favorites.NewSet(),
		params:    models.DefaultViewParams(),
		status:    StatusIdle,
	}
}

// Load reads the favorite set and fetches the project collection. On fetch
// failure the status becomes failed and the error is kept for display. A
// favorites read failure is logged and leaves the set empty.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	s.status = StatusLoading
	s.loadErr = nil
	s.mu.Unlock()

	if err := s.LoadFavorites(); err != nil {
		logger.Warn("Failed to load favorites, starting with none", zap.Error(err))
	}

	projects, err := s.source.FetchProjects(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.status = StatusFailed
		s.loadErr = err
		logger.Error("Failed to fetch projects", zap.Error(err))
		return fmt.Errorf("failed to fetch projects: %w", err)
	}

	s.projects = projects
	s.status = StatusReady
	logger.Debug("Session loaded",
		zap.Int("projects", len(projects)),
		zap.Int("favorites", s.favorites.Len()))
	return nil
}

// LoadFavorites reads the favorite set from the store without touching the
// project collection. On failure the set is left empty.
func (s *Session) LoadFavorites() error {
	favs, err := s.store.Load()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.favorites = favorites.NewSet()
		return fmt.Errorf("failed to load favorites: %w", err)
	}
	s.favorites = favs
	return nil
}

// Status returns the load state and, when failed, the load error.
func (s *Session) Status() (Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.loadErr
}

// Projects returns a copy of the loaded collection.
func (s *Session) Projects() []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Project(nil), s.projects...)
}

// Project returns the loaded project with the given name.
func (s *Session) Project(name string) (models.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.Name == name {
			return p, true
		}
	}
	return models.Project{}, false
}

// Favorites returns a copy of the favorite set.
func (s *Session) Favorites() favorites.Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.favorites.Clone()
}

// Params returns the current view parameters including the favorite set.
func (s *Session) Params() models.ViewParams {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paramsLocked()
}

func (s *Session) paramsLocked() models.ViewParams {
	p := s.params
	p.Tags = append([]string(nil), s.params.Tags...)
	p.Favorites = s.favorites.Clone()
	return p
}

// View derives the visible page from the current state.
func (s *Session) View() models.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view.Derive(s.projects, s.paramsLocked())
}

// SetLanguage selects a language; "" or "All" clears the filter.
func (s *Session) SetLanguage(language string) {
	if language == "" {
		language = models.AllLanguages
	}
	s.update(func(p *models.ViewParams) { p.Language = language })
}

// ToggleTag adds the tag to the selection or removes it when present.
func (s *Session) ToggleTag(tag string) {
	s.update(func(p *models.ViewParams) {
		for i, t := range p.Tags {
			if t == tag {
				p.Tags = append(p.Tags[:i:i], p.Tags[i+1:]...)
				return
			}
		}
		p.Tags = append(p.Tags, tag)
	})
}

// SetTags replaces the tag selection. Repeated tags are kept once.
func (s *Session) SetTags(tags []string) {
	s.update(func(p *models.ViewParams) { p.Tags = view.UniqueTags(tags) })
}

// SetRepoSearch sets the project name search.
func (s *Session) SetRepoSearch(q string) {
	s.update(func(p *models.ViewParams) { p.RepoSearch = q })
}

// SetIssueSearch sets the issue title search.
func (s *Session) SetIssueSearch(q string) {
	s.update(func(p *models.ViewParams) { p.IssueSearch = q })
}

// SetSort selects the sort field and direction. An unknown field becomes
// stars and a direction foreign to the field becomes its default.
func (s *Session) SetSort(field models.SortField, direction models.SortDirection) {
	opts := view.SortOptions{Field: field, Direction: direction}.Normalize()
	s.update(func(p *models.ViewParams) {
		p.SortField = opts.Field
		p.SortDirection = opts.Direction
	})
}

// SetPage moves to page n. Out of range pages derive an empty page.
func (s *Session) SetPage(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.Page = n
}

// SetPageSize changes the page size and returns to page 1.
func (s *Session) SetPageSize(size int) error {
	if size < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, size)
	}
	s.update(func(p *models.ViewParams) { p.PageSize = size })
	return nil
}

// update applies a filter or sort change and resets to the first page.
func (s *Session) update(fn func(p *models.ViewParams)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.params)
	s.params.Page = 1
}

// ToggleFavorite flips name in the favorite set and persists it. On a save
// failure the set is unchanged.
func (s *Session) ToggleFavorite(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := favorites.Toggle(s.store, s.favorites, name)
	if err != nil {
		return s.favorites.Has(name), err
	}
	s.favorites = next
	return next.Has(name), nil
}

// Submit sends a repository URL to the data source and returns the message
// to show. When the session is loaded a successful submission refreshes the
// collection; failures leave all state untouched.
func (s *Session) Submit(ctx context.Context, rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", ErrURLRequired
	}

	result, err := s.source.SubmitRepository(ctx, rawURL)
	if err != nil {
		logger.Warn("Repository submission failed", zap.String("url", rawURL), zap.Error(err))
		return SubmitFailureMessage, err
	}

	message := result.Message
	if message == "" {
		message = SubmitSuccessMessage
	}

	if status, _ := s.Status(); status == StatusReady {
		s.refresh(ctx)
	}
	return message, nil
}

// SubmitAsync runs Submit in a goroutine and reports through done.
func (s *Session) SubmitAsync(ctx context.Context, rawURL string, done func(message string, err error)) {
	go func() {
		message, err := s.Submit(ctx, rawURL)
		if done != nil {
			done(message, err)
		}
	}()
}

// refresh refetches the collection, keeping the current one on failure.
func (s *Session) refresh(ctx context.Context) {
	projects, err := s.source.FetchProjects(ctx)
	if err != nil {
		logger.Warn("Failed to refresh projects after submission", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.projects = projects
	s.mu.Unlock()
}
