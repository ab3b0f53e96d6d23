package cli

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/patchbaylabs/patchbay/internal/server"
	"github.com/patchbaylabs/patchbay/pkg/store"
)

// serveCommand creates the serve command for running the document service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		backend string
		dir     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP/WebSocket document service",
		Long: `Serve documents over HTTP and WebSocket.

Each open document gets one shared editing session: REST endpoints for
CRUD, history, grouping and export, plus a live WebSocket channel that
broadcasts every applied change to all connected clients.

The service stops cleanly on SIGINT/SIGTERM, saving every open
session before exiting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			storeCfg := cfg.storeConfig()
			if backend != "" {
				storeCfg.Backend = backend
			}
			if dir != "" {
				storeCfg.Dir = dir
			}

			ctx := cmd.Context()
			st, err := store.Open(ctx, storeCfg)
			if err != nil {
				return err
			}
			defer st.Close()

			printKeyValue("address", cfg.Addr)
			printKeyValue("backend", storeCfg.Backend)
			printInfo("open %s", StyleLink.Render(serviceURL(cfg.Addr)))
			srv := server.New(st, c.Logger)

			err = srv.Run(ctx, cfg.Addr)
			if errors.Is(err, http.ErrServerClosed) {
				err = nil
			}
			// Interrupt-driven shutdown surfaces as context.Canceled so
			// main can exit with the conventional 130.
			if err == nil && ctx.Err() != nil {
				return context.Canceled
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&backend, "store", "", "store backend: memory|file|redis|mongo (overrides config)")
	cmd.Flags().StringVar(&dir, "dir", "", "file store directory (overrides config)")

	return cmd
}

// serviceURL turns a listen address into a clickable URL. Bare-port
// addresses resolve to localhost.
func serviceURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
