package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/starford/decisionlog/internal"
	"github.com/starford/decisionlog/internal/index"
	"github.com/starford/decisionlog/internal/mcpserver"
	pkgconfig "github.com/starford/decisionlog/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func importOnce(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := internal.NewLogger(os.Stderr, cfg.App.LogLevel)

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	svc, err := internal.NewDecisionService(cfg, db, logger, nil)
	if err != nil {
		return err
	}
	res, err := svc.Import(ctx)
	if err != nil {
		return err
	}
	if !cmd.Bool("list") {
		return write(os.Stdout, cmd.String("format"), res)
	}
	rows, err := svc.ListDecisions(ctx, cmd.String("status"))
	if err != nil {
		return err
	}
	return write(os.Stdout, cmd.String("format"), rows)
}

func write(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// stdout carries the MCP protocol.
	logger := internal.NewLogger(os.Stderr, cfg.App.LogLevel)
	slog.SetDefault(logger)

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	svc, err := internal.NewDecisionService(cfg, db, logger, nil)
	if err != nil {
		return err
	}
	if _, err := svc.Import(ctx); err != nil {
		logger.Warn("initial import failed", slog.String("error", err.Error()))
	}
	return mcpserver.New(svc, version).ServeStdio()
}

func main() {
	cmd := &cli.Command{
		Name:    "decisionlog",
		Usage:   "Import architecture decision records into a searchable, linked index",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (.yaml or .toml)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Import decisions, watch for changes and serve the HTTP API",
				Action: serve,
			},
			{
				Name:   "import",
				Usage:  "Run a single import and print the result",
				Action: importOnce,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: json or yaml",
						Value: "json",
					},
					&cli.BoolFlag{
						Name:  "list",
						Usage: "Print the imported decisions instead of the summary",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "With --list, only print decisions with this status",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve the decision log over MCP on stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
