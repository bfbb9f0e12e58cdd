package view

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"githubglimpse/models"
)

// Languages is the language vocabulary offered for filtering, "All" first.
var Languages = []string{
	models.AllLanguages,
	"Python",
	"Go",
	"Java",
	"TypeScript",
	"JavaScript",
	"Rust",
	"C++",
	"C",
	"C#",
	"Ruby",
	"PHP",
	"Swift",
	"Kotlin",
	"Scala",
	"Haskell",
	"Dart",
	"Elixir",
	"Clojure",
	"Lua",
	"R",
	"Julia",
	"Perl",
	"Assembly",
	"COBOL",
}

// IsKnownLanguage reports whether lang belongs to the vocabulary.
func IsKnownLanguage(lang string) bool {
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// TopLanguages returns up to n language names ordered by weight, heaviest
// first. Equal weights are ordered by name.
func TopLanguages(languages map[string]int64, n int) []string {
	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		wi, wj := languages[names[i]], languages[names[j]]
		if wi != wj {
			return wi > wj
		}
		return names[i] < names[j]
	})
	if n >= 0 && len(names) > n {
		names = names[:n]
	}
	return names
}

// FormatStars renders a star count the way the project cards do:
// "N/A" when unknown, "1.2k" from a thousand upwards.
func FormatStars(stars *int) string {
	if stars == nil {
		return "N/A"
	}
	if *stars >= 1000 {
		return fmt.Sprintf("%.1fk", float64(*stars)/1000)
	}
	return strconv.Itoa(*stars)
}

// Truncate shortens text to maxLength runes, appending "..." when cut.
func Truncate(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) > maxLength {
		return string(runes[:maxLength]) + "..."
	}
	return text
}

// IssuesURL returns the repository issue list URL, derived from the first
// issue URL by dropping its last path segment. Empty when there are no issues.
func IssuesURL(p models.Project) string {
	if len(p.Issues) == 0 {
		return ""
	}
	u := p.Issues[0].URL
	if i := strings.LastIndex(u, "/"); i >= 0 && i < len(u)-1 {
		return u[:i]
	}
	return u
}

// IssuePreviewSize is how many issues a project detail lists before linking
// to the full issue list.
const IssuePreviewSize = 5

// IssueCount returns the open issue count reported for the project. The
// issue list may be truncated by the server, so it is only used when no
// count was reported.
func IssueCount(p models.Project) int {
	if p.IssuesCount > 0 {
		return p.IssuesCount
	}
	return len(p.Issues)
}

// PreviewIssues returns the first IssuePreviewSize issues.
func PreviewIssues(p models.Project) []models.Issue {
	if len(p.Issues) > IssuePreviewSize {
		return p.Issues[:IssuePreviewSize]
	}
	return p.Issues
}

// HasMoreIssues reports whether the project has issues beyond the preview.
func HasMoreIssues(p models.Project) bool {
	return IssueCount(p) > IssuePreviewSize
}

// IssueLabel renders the issue counter, e.g. "1 issue" or "12 issues".
func IssueLabel(count int) string {
	if count == 1 {
		return "1 issue"
	}
	return strconv.Itoa(count) + " issues"
}
