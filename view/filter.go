// Package view turns a raw project list into the page a user sees.
//
// The pipeline runs in four stages: Filter, Sort, PartitionFavorites and
// Paginate. Each stage is a pure function over its inputs, and Derive chains
// them. Nothing in this package performs I/O.
package view

import (
	"strings"

	"githubglimpse/models"
)

// Criteria holds the filter part of the view parameters.
type Criteria struct {
	Language    string
	Tags        []string
	RepoSearch  string
	IssueSearch string
}

// CriteriaFrom extracts the filter criteria from view parameters.
func CriteriaFrom(params models.ViewParams) Criteria {
	return Criteria{
		Language:    params.Language,
		Tags:        params.Tags,
		RepoSearch:  params.RepoSearch,
		IssueSearch: params.IssueSearch,
	}
}

// IsEmpty returns true if no criterion would exclude a project.
func (c Criteria) IsEmpty() bool {
	return isAllLanguages(c.Language) &&
		len(c.Tags) == 0 &&
		c.RepoSearch == "" &&
		c.IssueSearch == ""
}

// UniqueTags drops empty and repeated tags, keeping first occurrences in
// order.
func UniqueTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Filter returns the projects matching every criterion, in input order.
// The input slice is never modified.
func Filter(projects []models.Project, c Criteria) []models.Project {
	result := make([]models.Project, 0, len(projects))
	if c.IsEmpty() {
		return append(result, projects...)
	}

	m := newMatcher(c)
	for _, p := range projects {
		if m.matches(p) {
			result = append(result, p)
		}
	}
	return result
}

// matcher holds the criteria in the shape the predicates need, so the
// lowercasing and tag set are built once per Filter call.
type matcher struct {
	language    string
	tags        map[string]struct{}
	repoSearch  string
	issueSearch string
}

func newMatcher(c Criteria) matcher {
	m := matcher{
		language:    c.Language,
		repoSearch:  strings.ToLower(c.RepoSearch),
		issueSearch: strings.ToLower(c.IssueSearch),
	}
	if len(c.Tags) > 0 {
		m.tags = make(map[string]struct{}, len(c.Tags))
		for _, t := range c.Tags {
			m.tags[t] = struct{}{}
		}
	}
	return m
}

func (m matcher) matches(p models.Project) bool {
	return m.matchesLanguage(p) &&
		m.matchesTags(p) &&
		m.matchesRepoSearch(p) &&
		m.matchesIssueSearch(p)
}

func (m matcher) matchesLanguage(p models.Project) bool {
	if isAllLanguages(m.language) {
		return true
	}
	_, ok := p.Languages[m.language]
	return ok
}

// matchesTags needs at least one issue carrying one of the tags, so a
// project without issues never passes a tag filter.
func (m matcher) matchesTags(p models.Project) bool {
	if len(m.tags) == 0 {
		return true
	}
	for _, issue := range p.Issues {
		for _, label := range issue.Labels {
			if _, ok := m.tags[label]; ok {
				return true
			}
		}
	}
	return false
}

func (m matcher) matchesRepoSearch(p models.Project) bool {
	if m.repoSearch == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), m.repoSearch)
}

// matchesIssueSearch has the same zero-issue behavior as matchesTags.
func (m matcher) matchesIssueSearch(p models.Project) bool {
	if m.issueSearch == "" {
		return true
	}
	for _, issue := range p.Issues {
		if strings.Contains(strings.ToLower(issue.Title), m.issueSearch) {
			return true
		}
	}
	return false
}

func isAllLanguages(lang string) bool {
	return lang == "" || lang == models.AllLanguages
}
