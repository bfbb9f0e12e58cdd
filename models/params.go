package models

// AllLanguages is the language sentinel meaning "no language filter".
const AllLanguages = "All"

// DefaultPageSize is the number of projects shown per page.
const DefaultPageSize = 6

// SortField specifies which project field the view is ordered by.
type SortField string

const (
	SortByStars    SortField = "stars"
	SortByActivity SortField = "activity"
)

// IsValid checks if the sort field is known.
func (f SortField) IsValid() bool {
	switch f {
	case SortByStars, SortByActivity:
		return true
	default:
		return false
	}
}

// SortDirection specifies the ordering within a sort field. Stars use
// desc/asc, activity uses recent/oldest.
type SortDirection string

const (
	SortDesc   SortDirection = "desc"
	SortAsc    SortDirection = "asc"
	SortRecent SortDirection = "recent"
	SortOldest SortDirection = "oldest"
)

// ValidFor reports whether the direction applies to the given field.
func (d SortDirection) ValidFor(f SortField) bool {
	switch f {
	case SortByStars:
		return d == SortDesc || d == SortAsc
	case SortByActivity:
		return d == SortRecent || d == SortOldest
	default:
		return false
	}
}

// DefaultDirection returns the direction used when none (or an invalid one)
// is given for the field.
func (f SortField) DefaultDirection() SortDirection {
	if f == SortByActivity {
		return SortRecent
	}
	return SortDesc
}

// ViewParams holds every user-controlled filter, sort and pagination input.
type ViewParams struct {
	Language      string          `json:"selectedLanguage"`
	Tags          []string        `json:"selectedTags"`
	RepoSearch    string          `json:"repoSearch"`
	IssueSearch   string          `json:"issueSearch"`
	SortField     SortField       `json:"sortField"`
	SortDirection SortDirection   `json:"sortDirection"`
	Favorites     map[string]bool `json:"-"`
	Page          int             `json:"page"`
	PageSize      int             `json:"pageSize"`
}

// DefaultViewParams returns the parameters of a fresh session.
func DefaultViewParams() ViewParams {
	return ViewParams{
		Language:      AllLanguages,
		SortField:     SortByStars,
		SortDirection: SortDesc,
		Page:          1,
		PageSize:      DefaultPageSize,
	}
}

// Page is the outcome of deriving a view: the visible items and the paging totals.
type Page struct {
	Items      []Project `json:"pageItems"`
	TotalPages int       `json:"totalPages"`
	TotalItems int       `json:"totalItems"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
}
