package view

import (
	"sort"
	"time"

	"githubglimpse/models"
)

// activityLayouts lists the timestamp shapes accepted for lastActivity,
// tried in order.
var activityLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// SortOptions holds the sort part of the view parameters.
type SortOptions struct {
	Field     models.SortField
	Direction models.SortDirection
}

// SortOptionsFrom extracts the sort options from view parameters.
func SortOptionsFrom(params models.ViewParams) SortOptions {
	return SortOptions{Field: params.SortField, Direction: params.SortDirection}
}

// Normalize replaces an unknown field with stars and a direction that does
// not belong to the field with the field's default.
func (o SortOptions) Normalize() SortOptions {
	if !o.Field.IsValid() {
		o.Field = models.SortByStars
	}
	if !o.Direction.ValidFor(o.Field) {
		o.Direction = o.Field.DefaultDirection()
	}
	return o
}

// sortKey caches the comparable values of a project so timestamps are
// parsed once per Sort call rather than once per comparison.
type sortKey struct {
	project  models.Project
	stars    int
	activity time.Time
}

// Sort returns a stably sorted copy of projects. Projects without a star
// count order below every counted project. Unparseable activity timestamps
// order as the oldest instant.
func Sort(projects []models.Project, opts SortOptions) []models.Project {
	opts = opts.Normalize()

	keys := make([]sortKey, len(projects))
	for i, p := range projects {
		keys[i] = sortKey{project: p, stars: p.StarCount()}
		if opts.Field == models.SortByActivity {
			keys[i].activity = ParseActivity(p.LastActivity)
		}
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return less(keys[i], keys[j], opts)
	})

	sorted := make([]models.Project, len(keys))
	for i, k := range keys {
		sorted[i] = k.project
	}
	return sorted
}

// less only reports strict ordering so equal keys keep their input order.
func less(a, b sortKey, opts SortOptions) bool {
	switch opts.Field {
	case models.SortByActivity:
		if opts.Direction == models.SortOldest {
			return a.activity.Before(b.activity)
		}
		return a.activity.After(b.activity)
	default:
		if opts.Direction == models.SortAsc {
			return a.stars < b.stars
		}
		return a.stars > b.stars
	}
}

// ParseActivity parses a lastActivity timestamp. The zero time is returned
// for empty or malformed values.
func ParseActivity(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range activityLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
