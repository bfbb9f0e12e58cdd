package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"githubglimpse/view"
)

// NewLanguagesCmd creates the languages command.
func NewLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "Show the languages offered by the language filter",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, lang := range view.Languages {
				fmt.Fprintln(cmd.OutOrStdout(), lang)
			}
		},
	}
}
