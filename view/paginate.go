package view

import "githubglimpse/models"

// TotalPages returns ceil(n / pageSize), never less than one.
func TotalPages(n, pageSize int) int {
	if pageSize < 1 {
		pageSize = models.DefaultPageSize
	}
	pages := (n + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Paginate returns the 1-based page of projects along with the page count.
// A page outside 1..totalPages yields an empty slice rather than an error.
func Paginate(projects []models.Project, page, pageSize int) ([]models.Project, int) {
	if pageSize < 1 {
		pageSize = models.DefaultPageSize
	}
	total := TotalPages(len(projects), pageSize)

	if page < 1 {
		return []models.Project{}, total
	}
	start := (page - 1) * pageSize
	if start >= len(projects) {
		return []models.Project{}, total
	}
	end := start + pageSize
	if end > len(projects) {
		end = len(projects)
	}

	items := make([]models.Project, end-start)
	copy(items, projects[start:end])
	return items, total
}
