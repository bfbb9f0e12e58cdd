package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"githubglimpse/logger"
	"githubglimpse/models"
)

const projectColumns = `name, description, url, stars, last_activity, languages, issues, issues_count`

// StoreProject inserts a project or refreshes the stored copy.
func (db *DB) StoreProject(ctx context.Context, project models.Project) error {
	if project.Name == "" {
		return fmt.Errorf("%w: project name cannot be empty", ErrInvalidInput)
	}

	row, err := toRow(project)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	logger.Info("Storing project", zap.String("name", project.Name))
	query := db.conn.Rebind(`
		INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			description = excluded.description,
			url = excluded.url,
			stars = excluded.stars,
			last_activity = excluded.last_activity,
			languages = excluded.languages,
			issues = excluded.issues,
			issues_count = excluded.issues_count
	`)

	_, err = db.conn.ExecContext(ctx, query,
		row.Name, row.Description, row.URL, row.Stars, row.LastActivity,
		row.Languages, row.Issues, row.IssuesCount,
	)
	if err != nil {
		return fmt.Errorf("failed to store project %s: %w", project.Name, err)
	}

	logger.Info("Project stored successfully",
		zap.String("name", project.Name),
		zap.Int("issues", len(project.Issues)))
	return nil
}

// GetProject retrieves a stored project by name
func (db *DB) GetProject(ctx context.Context, name string) (*models.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: project name cannot be empty", ErrInvalidInput)
	}

	stmt, err := db.getStmt(ctx, `SELECT `+projectColumns+` FROM projects WHERE name = ?`)
	if err != nil {
		return nil, err
	}

	var row projectRow
	if err := stmt.GetContext(ctx, &row, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, name)
		}
		return nil, fmt.Errorf("failed to get project %s: %w", name, err)
	}

	project, err := row.toProject()
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// ListProjects returns every stored project ordered by name.
func (db *DB) ListProjects(ctx context.Context) ([]models.Project, error) {
	var rows []projectRow
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY name`
	if err := db.conn.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects := make([]models.Project, 0, len(rows))
	for _, row := range rows {
		project, err := row.toProject()
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	logger.Debug("Listed projects", zap.Int("count", len(projects)))
	return projects, nil
}

// ProjectNames returns the names of every stored project.
func (db *DB) ProjectNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := db.conn.SelectContext(ctx, &names, `SELECT name FROM projects ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list project names: %w", err)
	}
	return names, nil
}

// DeleteProject removes a project from the catalog.
func (db *DB) DeleteProject(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("%w: project name cannot be empty", ErrInvalidInput)
	}

	res, err := db.conn.ExecContext(ctx, db.conn.Rebind(`DELETE FROM projects WHERE name = ?`), name)
	if err != nil {
		return fmt.Errorf("failed to delete project %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, name)
	}

	logger.Info("Project deleted", zap.String("name", name))
	return nil
}
