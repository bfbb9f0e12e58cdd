package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"githubglimpse/models"
	"githubglimpse/view"
)

var errProjectNotFound = errors.New("project not found")

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// NewShowCmd creates the show command, which prints one project with a
// preview of its open issues.
func NewShowCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "show <owner/repo>",
		Short:   "Show a project and its open issues",
		Example: "  glimpse show golang/go",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := env.newSession()
			if err := s.Load(cmd.Context()); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), fetchFailedMessage)
				return err
			}

			p, ok := s.Project(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", errProjectNotFound, args[0])
			}
			writeProject(cmd.OutOrStdout(), p, s.Favorites().Has(p.Name))
			return nil
		},
	}
}

func writeProject(w io.Writer, p models.Project, favorite bool) {
	title := p.Name
	if favorite {
		title += " ★"
	}
	fmt.Fprintln(w, titleStyle.Render(title))
	if p.Description != "" {
		fmt.Fprintln(w, p.Description)
	}
	if p.URL != "" {
		fmt.Fprintln(w, mutedStyle.Render(p.URL))
	}

	fmt.Fprintf(w, "Stars: %s | Languages: %s | %s | Last activity: %s\n",
		view.FormatStars(p.Stars),
		strings.Join(view.TopLanguages(p.Languages, 3), ", "),
		view.IssueLabel(view.IssueCount(p)),
		activityLabel(p.LastActivity))

	preview := view.PreviewIssues(p)
	if len(preview) == 0 {
		fmt.Fprintln(w, "No open issues.")
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Open issues"))
	for _, issue := range preview {
		line := fmt.Sprintf("  #%d %s", issue.Number, issue.Title)
		if len(issue.Labels) > 0 {
			line += " " + labelStyle.Render("["+strings.Join(issue.Labels, ", ")+"]")
		}
		fmt.Fprintf(w, "%s (%s)\n", line, commentLabel(issue.CommentCount))
		if issue.URL != "" {
			fmt.Fprintln(w, "    "+mutedStyle.Render(issue.URL))
		}
	}

	if view.HasMoreIssues(p) {
		if u := view.IssuesURL(p); u != "" {
			fmt.Fprintf(w, "Explore more issues: %s\n", u)
		}
	}
}

func commentLabel(n int) string {
	if n == 1 {
		return "1 comment"
	}
	return fmt.Sprintf("%d comments", n)
}
