package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command, which runs the catalog server.
func NewServeCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog API server",
		Long: `Run the catalog API server.

The server fetches repositories from GitHub, stores them in the configured
database, refreshes them periodically and serves GET /repos, POST /add-repo,
GET /view and GET /health.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if env.Serve == nil {
				return errors.New("serve is not available")
			}

			cfg := *env.Config
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.ListenAddr = addr
			}
			return env.Serve(&cfg)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default from LISTEN_ADDR)")
	return cmd
}
