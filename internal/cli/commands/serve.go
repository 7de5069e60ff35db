package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/leapstack-labs/leappage/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve pages and the page builder",
		Long: `Start the HTTP server.

Pages are served at /pages/{id} and the editor at /pagebuilder/edit?page={id}.
With --watch, changes under the theme directory reload the theme and refresh
open editors.`,
		Example: `  # Serve on the default port
  leappage serve

  # Serve on port 3000 without watching the theme
  leappage serve --port 3000 --watch=false`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().Int("port", 0, "Port to listen on (default 8080)")
	cmd.Flags().Bool("watch", true, "Reload the theme when its files change")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	site, cleanup, err := cmdCtx.OpenSite(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := server.NewServer(server.Config{
		Builder:  site.Builder,
		Store:    site.Store,
		Theme:    site.Theme,
		ThemeDir: cmdCtx.Cfg.ThemeDir(),
		Port:     cmdCtx.Cfg.Server.Port,
		Watch:    cmdCtx.Cfg.Server.Watch,
		Logger:   cmdCtx.Logger,

		SessionSecret: cmdCtx.Cfg.Server.SessionSecret,
	})
	return serve(ctx, srv)
}

var serve = func(ctx context.Context, srv *server.Server) error {
	return srv.Serve(ctx)
}
