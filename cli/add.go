package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewAddCmd creates the add command, which submits a repository URL for
// tracking.
func NewAddCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "add <repository-url>",
		Short: "Submit a GitHub repository",
		Example: `  glimpse add https://github.com/golang/go
  glimpse add golang/go`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message, err := env.newSession().Submit(cmd.Context(), args[0])
			if message != "" {
				fmt.Fprintln(cmd.OutOrStdout(), message)
			}
			return err
		},
	}
}
