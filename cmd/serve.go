package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/internal/iocache"
	"github.com/codesage/codesage/internal/web"
	"github.com/spf13/cobra"
)

// serveCmd runs the browser UI.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the CodeSage browser UI.",
	Long: `Start a web server with the analysis, Q&A and documentation tabs.

Each browser gets its own workspace, kept in memory by a session cookie.
The least recently used sessions are dropped beyond --sessions.

Examples:
  # Serve on the default address
  codesage serve

  # Serve on another port against a remote service
  codesage serve --listen :8080 --api-url https://codesage.example.com/api/v1`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := executeServe(rootCtx); err != nil {
			contract.LogFatal("Cannot serve UI", err)
		}
	},
}

func executeServe(ctx context.Context) error {
	client := newClient()
	srv, err := web.NewServer(client, iocache.Manager, cfg.SessionLimit)
	if err != nil {
		return err
	}
	if mb, ok := fetchMaxFileSizeMB(ctx, client); ok {
		srv.SetMaxFileSizeMB(mb)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, _ = fmt.Fprintf(os.Stderr, "🌐 Serving CodeSage on %s (service %s)\n", cfg.ListenAddr, cfg.APIURL)
	return srv.Serve(ctx, cfg.ListenAddr)
}
