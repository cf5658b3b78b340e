package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foomo/portfolio-mcp/mcp"
	"github.com/foomo/portfolio-mcp/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site bundle together with the MCP, SSE and remote endpoints",
	Long: `Starts the static host for the site bundle. The headless session is
pointed at site.base_url, which defaults to this host, and is exposed via
streamable HTTP MCP with an SSE change stream below server.mcp_endpoint and a
websocket remote on /remote.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		serviceInstance, err := newService(cfg.Site, logger)
		if err != nil {
			return err
		}

		srv := server.New(server.Config{
			Addr:           cfg.Server.Addr,
			Dir:            cfg.Server.Dir,
			MCPEndpoint:    cfg.Server.MCPEndpoint,
			NoCache:        cfg.Server.NoCache,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		}, logger)

		if cfg.Server.MCPEndpoint != "" {
			mcpHandler := mcp.NewMcpHTTPSSEServer(logger, mcp.NewServer(serviceInstance), serviceInstance, cfg.Server.MCPEndpoint, nil)
			defer mcpHandler.Close()
			srv.Mount(cfg.Server.MCPEndpoint, mcpHandler)
		}
		srv.Mount("/remote", server.NewRemote(serviceInstance, logger))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("shutdown", zap.Error(err))
			}
		}()

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
