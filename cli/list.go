package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"githubglimpse/favorites"
	"githubglimpse/models"
	"githubglimpse/session"
	"githubglimpse/view"
)

// fetchFailedMessage is printed when the project collection cannot be loaded.
const fetchFailedMessage = "Failed to fetch projects."

const descriptionWidth = 60

var errUnknownLanguage = errors.New("unknown language")

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	favoriteStyle = cellStyle.Foreground(lipgloss.Color("11"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type listOptions struct {
	language    string
	tags        []string
	search      string
	issueSearch string
	sort        string
	direction   string
	page        int
	pageSize    int
	format      string
}

// NewListCmd creates the list command.
func NewListCmd(env *Env) *cobra.Command {
	opts := listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects, favorites first",
		Long: `List tracked projects.

Projects are filtered by language, issue labels and text, sorted by stars or
last activity, and favorites are listed ahead of everything else.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.pageSize == 0 {
				opts.pageSize = env.Config.PageSize
			}
			if opts.format != "table" && opts.format != "json" {
				return fmt.Errorf("invalid format %q (must be table or json)", opts.format)
			}
			if opts.language != "" && !view.IsKnownLanguage(opts.language) {
				return fmt.Errorf("%w: %q (see glimpse languages)", errUnknownLanguage, opts.language)
			}

			s := env.newSession()
			if err := s.SetPageSize(opts.pageSize); err != nil {
				return err
			}
			if err := s.Load(cmd.Context()); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), fetchFailedMessage)
				return err
			}

			applyListOptions(s, opts)
			page := s.View()

			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), page)
			}
			writeTable(cmd.OutOrStdout(), page, s.Favorites())
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.language, "language", "l", models.AllLanguages, "Only projects using this language")
	cmd.Flags().StringSliceVarP(&opts.tags, "tag", "t", nil, "Only projects with an open issue carrying one of these labels")
	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "Substring of the project name")
	cmd.Flags().StringVar(&opts.issueSearch, "issue-search", "", "Substring of an open issue title")
	cmd.Flags().StringVar(&opts.sort, "sort", string(models.SortByStars), "Sort field: stars or activity")
	cmd.Flags().StringVar(&opts.direction, "direction", "", "desc or asc for stars, recent or oldest for activity")
	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "Page number")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "Projects per page (default from PAGE_SIZE)")
	cmd.Flags().StringVar(&opts.format, "format", "table", "Output format: table or json")

	return cmd
}

// applyListOptions sets filters before the page since every filter change
// resets the page.
func applyListOptions(s *session.Session, opts listOptions) {
	s.SetLanguage(opts.language)
	s.SetTags(opts.tags)
	s.SetRepoSearch(opts.search)
	s.SetIssueSearch(opts.issueSearch)
	s.SetSort(models.SortField(opts.sort), models.SortDirection(opts.direction))
	s.SetPage(opts.page)
}

func writeJSON(w io.Writer, page models.Page) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(page); err != nil {
		return errors.New("failed to encode page")
	}
	return nil
}

func writeTable(w io.Writer, page models.Page, favs favorites.Set) {
	if page.TotalItems == 0 {
		fmt.Fprintln(w, "No projects match the current filters.")
		return
	}

	rows := make([][]string, 0, len(page.Items))
	for _, p := range page.Items {
		marker := ""
		if favs.Has(p.Name) {
			marker = "★"
		}
		rows = append(rows, []string{
			marker,
			p.Name,
			view.FormatStars(p.Stars),
			strings.Join(view.TopLanguages(p.Languages, 3), ", "),
			view.IssueLabel(view.IssueCount(p)),
			activityLabel(p.LastActivity),
			view.Truncate(p.Description, descriptionWidth),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("", "PROJECT", "STARS", "LANGUAGES", "ISSUES", "LAST ACTIVITY", "DESCRIPTION").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return favoriteStyle
			default:
				return cellStyle
			}
		})

	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, footerStyle.Render(fmt.Sprintf("Page %d of %d (%d projects)", page.Page, page.TotalPages, page.TotalItems)))
}

// activityLabel shows the date part of the last activity timestamp.
func activityLabel(raw string) string {
	t := view.ParseActivity(raw)
	if t.IsZero() {
		return "unknown"
	}
	return t.Format("2006-01-02")
}
