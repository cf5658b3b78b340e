// Package config loads the portfolio configuration from a YAML file
// overlaid by PORTFOLIO_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/foomo/portfolio-mcp/contact"
	"github.com/foomo/portfolio-mcp/gallery"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const EnvPrefix = "PORTFOLIO_"

type Config struct {
	Site   SiteConfig   `yaml:"site" koanf:"site"`
	Server ServerConfig `yaml:"server" koanf:"server"`
	Log    LogConfig    `yaml:"log" koanf:"log"`
}

// SiteConfig describes the page session.
type SiteConfig struct {
	BaseURL         string        `yaml:"base_url" koanf:"base_url"`
	Shell           string        `yaml:"shell" koanf:"shell"`
	InitialHash     string        `yaml:"initial_hash" koanf:"initial_hash"`
	ContactEndpoint string        `yaml:"contact_endpoint" koanf:"contact_endpoint"`
	BatchSize       int           `yaml:"batch_size" koanf:"batch_size"`
	ScrollThreshold int           `yaml:"scroll_threshold" koanf:"scroll_threshold"`
	BannerDelay     time.Duration `yaml:"banner_delay" koanf:"banner_delay"`
	ProbeImages     bool          `yaml:"probe_images" koanf:"probe_images"`
}

// ServerConfig describes the static host.
type ServerConfig struct {
	Addr           string   `yaml:"addr" koanf:"addr"`
	Dir            string   `yaml:"dir" koanf:"dir"`
	MCPEndpoint    string   `yaml:"mcp_endpoint" koanf:"mcp_endpoint"`
	NoCache        []string `yaml:"no_cache" koanf:"no_cache"`
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"` // "json" or "console"
}

// DefaultNoCache keeps fragments and data documents fresh.
var DefaultNoCache = []string{
	"**/*.html",
	"**/*.json",
}

// Default returns a Config with the values the site ships with.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			BaseURL:         "http://localhost:8080/",
			Shell:           "index.html",
			ContactEndpoint: contact.DefaultEndpoint,
			BatchSize:       gallery.DefaultBatchSize,
			ScrollThreshold: gallery.DefaultScrollThreshold,
			BannerDelay:     gallery.DefaultBannerDelay,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			Dir:         ".",
			MCPEndpoint: "/mcp",
			NoCache:     append([]string(nil), DefaultNoCache...),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (PORTFOLIO_SITE_BASE_URL -> site.base_url).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps PORTFOLIO_SERVER_NO_CACHE to server.no_cache.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url is required")
	}
	if c.Site.BatchSize <= 0 {
		return fmt.Errorf("site.batch_size must be positive")
	}
	if c.Site.ScrollThreshold <= 0 {
		return fmt.Errorf("site.scroll_threshold must be positive")
	}
	if c.Site.BannerDelay <= 0 {
		return fmt.Errorf("site.banner_delay must be positive")
	}
	if c.Server.MCPEndpoint != "" && !strings.HasPrefix(c.Server.MCPEndpoint, "/") {
		return fmt.Errorf("invalid server.mcp_endpoint %q: must start with /", c.Server.MCPEndpoint)
	}
	if !validLogFormats[c.Log.Format] {
		return fmt.Errorf("invalid log.format %q: must be one of json, console", c.Log.Format)
	}
	return nil
}

// GalleryOptions returns the gallery settings of the site section.
func (c SiteConfig) GalleryOptions() gallery.Options {
	return gallery.Options{
		BatchSize:       c.BatchSize,
		ScrollThreshold: c.ScrollThreshold,
		BannerDelay:     c.BannerDelay,
	}
}
