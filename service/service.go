package service

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"githubglimpse/config"
	"githubglimpse/db"
	"githubglimpse/github"
	"githubglimpse/logger"
	"githubglimpse/models"
	"githubglimpse/server"
)

// Service errors
var (
	ErrServiceInit     = fmt.Errorf("service initialization error")
	ErrServiceShutdown = fmt.Errorf("service shutdown error")
)

// Service runs the catalog server: it seeds and refreshes the stored
// projects and serves them over HTTP.
type Service struct {
	config   *config.Config
	database *db.DB
	catalog  *catalog
	server   *server.Server
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewService creates a new service instance from a loaded configuration
func NewService(cfg *config.Config) (*Service, error) {
	if err := cfg.ValidateServer(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceInit, err)
	}

	database, err := db.New(db.Options{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DSN(),
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize database: %v", ErrServiceInit, err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	if err := database.Migrate(ctx); err != nil {
		cancel()
		database.Close()
		return nil, fmt.Errorf("%w: %v", ErrServiceInit, err)
	}

	client := github.NewClient(cfg.GitHubToken, cfg.HTTPTimeout)
	cat := newCatalog(database, client, cfg.IssueLimit)
	srv := server.New(cat, server.Options{
		Addr:         cfg.ListenAddr,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	logger.Info("Service initialized successfully",
		zap.String("db_driver", cfg.DBDriver),
		zap.String("listen_addr", cfg.ListenAddr),
		zap.Int("refresh_interval", cfg.RefreshInterval),
		zap.Int("seed_repos", len(cfg.SeedRepos)))

	return &Service{
		config:   cfg,
		database: database,
		catalog:  cat,
		server:   srv,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start seeds the catalog, starts monitoring and serves until SIGINT/SIGTERM.
func (s *Service) Start() error {
	seedRepositories(s.ctx, s.catalog, s.config.SeedRepos)

	s.startMonitoring()

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.server.Listen()
	}()

	if err := s.waitForShutdown(errChan); err != nil {
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%w: %v", ErrServiceShutdown, err)
	}
	return nil
}

// startMonitoring starts the periodic project refresh
func (s *Service) startMonitoring() {
	logger.Info("Starting project monitoring",
		zap.Int("refresh_interval", s.config.RefreshInterval))

	s.database.MonitorProjects(
		s.ctx,
		time.Duration(s.config.RefreshInterval)*time.Second,
		s.catalog.Refresh,
	)
}

// waitForShutdown blocks until a shutdown signal arrives or the listener fails.
func (s *Service) waitForShutdown(errChan <-chan error) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		s.cancel()
		return nil
	case err := <-errChan:
		s.cancel()
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	}
}

// Close performs cleanup operations
func (s *Service) Close() error {
	logger.Info("Closing service")
	s.cancel()
	if err := s.database.Close(); err != nil {
		return fmt.Errorf("%w: failed to close database: %v", ErrServiceShutdown, err)
	}
	return nil
}

// repositoryAdder is the part of the catalog seeding needs.
type repositoryAdder interface {
	AddRepository(ctx context.Context, rawURL string) (models.Project, error)
}

// seedRepositories adds every configured repository, logging failures, and
// returns how many were stored.
func seedRepositories(ctx context.Context, adder repositoryAdder, repos []string) int {
	stored := 0
	for _, repo := range repos {
		if ctx.Err() != nil {
			break
		}
		if _, err := adder.AddRepository(ctx, repo); err != nil {
			logger.Warn("Error seeding repository", zap.String("repo", repo), zap.Error(err))
			continue
		}
		stored++
	}
	if len(repos) > 0 {
		logger.Info("Seeded repositories", zap.Int("stored", stored), zap.Int("configured", len(repos)))
	}
	return stored
}
