// Package mcp parses MCP command flags and serves the narrative tools over
// stdio or HTTP.
package mcp

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/questline/internal/platform/cmd"
	"github.com/louisbranch/questline/internal/services/mcp/service"
	"github.com/louisbranch/questline/internal/services/narrative/app"
)

// Config holds MCP command configuration.
type Config struct {
	HTTPAddr     string   `env:"QUESTLINE_MCP_HTTP_ADDR"     envDefault:"localhost:8081"`
	Transport    string   `env:"QUESTLINE_MCP_TRANSPORT"     envDefault:"stdio"`
	AllowedHosts []string `env:"QUESTLINE_MCP_ALLOWED_HOSTS" envSeparator:","`
	Env          app.Env
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.StringVar(&cfg.Env.CatalogPath, "catalog", cfg.Env.CatalogPath, "Transition catalog JSON path")
	fs.StringVar(&cfg.Env.StateBackend, "state-backend", cfg.Env.StateBackend, "World state backend: file, sqlite, or s3")
	fs.StringVar(&cfg.Env.StatePath, "state", cfg.Env.StatePath, "World state path (file, sqlite database, or s3 key)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run opens the narrative service and starts the MCP protocol adapter.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		a, err := app.Open(ctx, cfg.Env)
		if err != nil {
			return err
		}
		defer a.Close()

		return service.Run(ctx, service.Config{
			Transport:    service.TransportKind(cfg.Transport),
			HTTPAddr:     cfg.HTTPAddr,
			AllowedHosts: cfg.AllowedHosts,
		}, a.Service)
	})
}
