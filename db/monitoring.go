package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"githubglimpse/logger"
)

// maxRefreshWorkers bounds how many projects are refreshed at once.
const maxRefreshWorkers = 5

// RefreshFunc refreshes a single stored project.
type RefreshFunc func(ctx context.Context, name string) error

// MonitorProjects starts a goroutine that refreshes every stored project on
// each tick until ctx is cancelled.
func (db *DB) MonitorProjects(ctx context.Context, interval time.Duration, refresh RefreshFunc) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := db.RefreshProjects(ctx, refresh); err != nil {
					logger.Error("Error refreshing projects", zap.Error(err))
				}
			}
		}
	}()
}

// RefreshProjects runs refresh for every stored project using a bounded
// worker pool and returns the joined failures.
func (db *DB) RefreshProjects(ctx context.Context, refresh RefreshFunc) error {
	names, err := db.ProjectNames(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch projects for monitoring: %w", err)
	}

	sem := make(chan struct{}, maxRefreshWorkers)
	errChan := make(chan error, len(names))
	var wg sync.WaitGroup

	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			sem <- struct{}{}        // Acquire semaphore
			defer func() { <-sem }() // Release semaphore

			if ctx.Err() != nil {
				return
			}
			if err := refresh(ctx, name); err != nil {
				errChan <- fmt.Errorf("error refreshing project %s: %w", name, err)
			}
		}(name)
	}

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}

	logger.Info("Refreshed projects",
		zap.Int("count", len(names)),
		zap.Int("failed", len(errs)))
	return errors.Join(errs...)
}
