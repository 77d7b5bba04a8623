package main

import (
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"examprep/internal/logger"
	"examprep/internal/server"
	"examprep/internal/services"
	"examprep/pkg/preptypes"
)

func newServeCommand(opts *rootOptions, load appLoader) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the examprep HTTP API",
		Long: `Serve the HTTP API. Each client-id cookie gets its own accounts,
session and history, as one browser would.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, load, func(a *app) error {
				srv, err := newHTTPServer(a)
				if err != nil {
					return err
				}
				if addr == "" {
					addr = a.cfg.ServerAddr
				}

				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()
				return srv.Run(ctx, addr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address [default: server.addr, :8080]")
	return cmd
}

func newHTTPServer(a *app) (*server.Server, error) {
	switch {
	case a.cfg.TestMode:
		gin.SetMode(gin.TestMode)
	case logger.Logger.GetLevel() <= log.DebugLevel:
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	return server.New(server.Config{
		Namespaces: a.storage,
		NewWorkspace: func(store preptypes.Storage) *services.Workspace {
			return services.NewWorkspace(store, a.framework, a.cfg)
		},
		CodeTTL:  a.cfg.CodeTTL,
		TestMode: a.cfg.TestMode,
	})
}
