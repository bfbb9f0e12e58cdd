// Package models defines the core data structures used throughout the application.
package models

// Project represents a tracked open-source repository as served by GET /repos
type Project struct {
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	URL          string           `json:"url,omitempty"`
	Stars        *int             `json:"stars"`
	LastActivity string           `json:"lastActivity"`
	Languages    map[string]int64 `json:"languages"`
	Issues       []Issue          `json:"issues"`
	IssuesCount  int              `json:"issues_count"`
}

// Issue represents an open GitHub issue attached to a project
type Issue struct {
	URL          string   `json:"url"`
	Number       int      `json:"number"`
	Title        string   `json:"title"`
	Labels       []string `json:"labels"`
	CommentCount int      `json:"commentCount"`
}

// HasStars reports whether the project carries a star count.
func (p Project) HasStars() bool {
	return p.Stars != nil
}

// StarCount returns the star count, or -1 when it is absent so that missing
// values order below every real count.
func (p Project) StarCount() int {
	if p.Stars == nil {
		return -1
	}
	return *p.Stars
}

// IntPtr returns a pointer to v. Handy for building projects with a star count.
func IntPtr(v int) *int {
	return &v
}

// SubmitRequest is the payload for POST /add-repo
type SubmitRequest struct {
	URL string `json:"url"`
}

// SubmitResponse is the body returned by POST /add-repo
type SubmitResponse struct {
	Message string `json:"message"`
}
