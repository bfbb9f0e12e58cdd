// Package cli is the command line front end: it browses the project
// directory, manages favorites, submits repositories and runs the catalog
// server.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"githubglimpse/config"
	"githubglimpse/datasource"
	"githubglimpse/db"
	"githubglimpse/favorites"
	"githubglimpse/logger"
	"githubglimpse/service"
	"githubglimpse/session"
)

// Env carries the collaborators the commands share.
type Env struct {
	Config *config.Config
	Source session.DataSource
	Store  favorites.Store
	// Serve runs the catalog server until shutdown.
	Serve func(cfg *config.Config) error
}

func (e *Env) newSession() *session.Session {
	return session.New(e.Source, e.Store)
}

// NewRootCmd builds the command tree around env.
func NewRootCmd(env *Env) *cobra.Command {
	root := &cobra.Command{
		Use:           "glimpse",
		Short:         "Browse open-source projects with open issues",
		Long:          "GitHub Glimpse lists tracked open-source repositories, filters them by language, label and text, and pins your favorites first.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.HiddenDefaultCmd = true

	root.AddCommand(
		NewListCmd(env),
		NewShowCmd(env),
		NewFavoriteCmd(env),
		NewFavoritesCmd(env),
		NewAddCmd(env),
		NewLanguagesCmd(),
		NewServeCmd(env),
	)
	return root
}

// Execute loads configuration, wires the collaborators and runs the command
// named on the command line. It returns the process exit code.
func Execute() int {
	cfg := config.NewConfig()
	if err := cfg.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	env, cleanup, err := buildEnv(cfg)
	if err != nil {
		logger.Error("Failed to initialize", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer cleanup()

	if err := NewRootCmd(env).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// buildEnv creates the data source client and the configured favorites store.
func buildEnv(cfg *config.Config) (*Env, func(), error) {
	source, err := datasource.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout)
	if err != nil {
		return nil, nil, err
	}

	env := &Env{Config: cfg, Source: source, Serve: runService}
	cleanup := func() {}

	switch cfg.FavoritesBackend {
	case config.BackendSQL:
		database, err := db.New(db.Options{
			Driver:          cfg.DBDriver,
			DSN:             cfg.DSN(),
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(context.Background()); err != nil {
			database.Close()
			return nil, nil, err
		}
		env.Store = db.NewFavoriteStore(database)
		cleanup = func() { database.Close() }
	default:
		env.Store = favorites.NewFileStore(cfg.FavoritesPath)
	}

	return env, cleanup, nil
}

// runService starts the catalog server and blocks until it stops.
func runService(cfg *config.Config) error {
	svc, err := service.NewService(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Error during service shutdown", zap.Error(err))
		}
	}()

	return svc.Start()
}
