package view

import "githubglimpse/models"

// PartitionFavorites moves favorites ahead of the other projects while
// keeping the relative order inside each group.
func PartitionFavorites(projects []models.Project, favorites map[string]bool) []models.Project {
	result := make([]models.Project, 0, len(projects))
	if len(favorites) == 0 {
		return append(result, projects...)
	}

	rest := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if favorites[p.Name] {
			result = append(result, p)
		} else {
			rest = append(rest, p)
		}
	}
	return append(result, rest...)
}

// Derive runs the whole pipeline and returns the visible page.
func Derive(projects []models.Project, params models.ViewParams) models.Page {
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = models.DefaultPageSize
	}

	filtered := Filter(projects, CriteriaFrom(params))
	sorted := Sort(filtered, SortOptionsFrom(params))
	ordered := PartitionFavorites(sorted, params.Favorites)
	items, total := Paginate(ordered, params.Page, pageSize)

	return models.Page{
		Items:      items,
		TotalPages: total,
		TotalItems: len(ordered),
		Page:       params.Page,
		PageSize:   pageSize,
	}
}
