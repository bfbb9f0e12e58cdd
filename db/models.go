package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"githubglimpse/models"
)

// projectRow is the stored shape of a project. Languages and issues are
// kept as JSON text so the schema works on both drivers.
type projectRow struct {
	Name         string        `db:"name"`
	Description  string        `db:"description"`
	URL          string        `db:"url"`
	Stars        sql.NullInt64 `db:"stars"`
	LastActivity string        `db:"last_activity"`
	Languages    string        `db:"languages"`
	Issues       string        `db:"issues"`
	IssuesCount  int           `db:"issues_count"`
}

func toRow(p models.Project) (projectRow, error) {
	languages := p.Languages
	if languages == nil {
		languages = map[string]int64{}
	}
	langJSON, err := json.Marshal(languages)
	if err != nil {
		return projectRow{}, fmt.Errorf("failed to encode languages: %w", err)
	}

	issues := p.Issues
	if issues == nil {
		issues = []models.Issue{}
	}
	issuesJSON, err := json.Marshal(issues)
	if err != nil {
		return projectRow{}, fmt.Errorf("failed to encode issues: %w", err)
	}

	row := projectRow{
		Name:         p.Name,
		Description:  p.Description,
		URL:          p.URL,
		LastActivity: p.LastActivity,
		Languages:    string(langJSON),
		Issues:       string(issuesJSON),
		IssuesCount:  p.IssuesCount,
	}
	if p.Stars != nil {
		row.Stars = sql.NullInt64{Int64: int64(*p.Stars), Valid: true}
	}
	return row, nil
}

func (r projectRow) toProject() (models.Project, error) {
	p := models.Project{
		Name:         r.Name,
		Description:  r.Description,
		URL:          r.URL,
		LastActivity: r.LastActivity,
		Languages:    map[string]int64{},
		Issues:       []models.Issue{},
		IssuesCount:  r.IssuesCount,
	}
	if r.Stars.Valid {
		p.Stars = models.IntPtr(int(r.Stars.Int64))
	}
	if r.Languages != "" {
		if err := json.Unmarshal([]byte(r.Languages), &p.Languages); err != nil {
			return models.Project{}, fmt.Errorf("failed to decode languages of %s: %w", r.Name, err)
		}
	}
	if r.Issues != "" {
		if err := json.Unmarshal([]byte(r.Issues), &p.Issues); err != nil {
			return models.Project{}, fmt.Errorf("failed to decode issues of %s: %w", r.Name, err)
		}
	}
	return p, nil
}
