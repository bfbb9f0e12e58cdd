package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewFavoriteCmd creates the favorite command, which toggles one project.
func NewFavoriteCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <owner/repo>",
		Short: "Pin or unpin a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := env.newSession()
			if err := s.LoadFavorites(); err != nil {
				return err
			}

			name := args[0]
			added, err := s.ToggleFavorite(name)
			if err != nil {
				return err
			}

			if added {
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s to favorites\n", name)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from favorites\n", name)
			}
			return nil
		},
	}
}

// NewFavoritesCmd creates the favorites command, which lists pinned projects.
func NewFavoritesCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "favorites",
		Short: "List pinned projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := env.newSession()
			if err := s.LoadFavorites(); err != nil {
				return err
			}

			names := s.Favorites().Names()
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No favorites yet.")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
