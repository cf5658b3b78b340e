package cmd

import (
	"github.com/foomo/portfolio-mcp/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var stdioCmd = &cobra.Command{
	Use:   "stdio",
	Short: "Run the MCP server on stdio against site.base_url",
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

		logger.Info("starting MCP server in stdio mode", zap.String("baseURL", cfg.Site.BaseURL))
		return server.ServeStdio(mcp.NewServer(serviceInstance))
	},
}

func init() {
	rootCmd.AddCommand(stdioCmd)
}
