package cmd

import (
	"fmt"

	"github.com/foomo/portfolio-mcp/config"
	"github.com/foomo/portfolio-mcp/logging"
	"github.com/foomo/portfolio-mcp/mcp"
	"github.com/foomo/portfolio-mcp/service"
	"github.com/foomo/portfolio-mcp/site"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:     "portfolio",
	Short:   "Headless driver and host for the portfolio site",
	Version: mcp.Version,
	Long: `Portfolio serves the static site bundle and drives a headless page
session against it. The session loads sections, renders the blog and the
photo gallery and submits the contact form the way the browser does, and is
exposed to AI agents via MCP.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "portfolio.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// setup loads and validates the configuration and builds the logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newService creates the page session described by the site configuration.
func newService(cfg config.SiteConfig, logger *zap.Logger) (service.Service, error) {
	s, err := site.New(site.Options{
		BaseURL:         cfg.BaseURL,
		Shell:           cfg.Shell,
		InitialHash:     cfg.InitialHash,
		ContactEndpoint: cfg.ContactEndpoint,
		Gallery:         cfg.GalleryOptions(),
		ProbeImages:     cfg.ProbeImages,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating site: %w", err)
	}
	return service.NewService(s, logger), nil
}
