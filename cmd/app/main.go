package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/raido/internal"
	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/mcpserver"
	"github.com/starford/raido/internal/report"
	"github.com/starford/raido/internal/storage"
	"github.com/starford/raido/internal/vault"
	"github.com/starford/raido/internal/vaultservice"
	pkgconfig "github.com/starford/raido/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	path := cmd.String("config")

	// Missing default config is fine: run on built-in defaults. An explicitly
	// requested file must exist.
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !cmd.IsSet("config") {
		return cfg, nil
	}
	if err := pkgconfig.Load(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func runScan(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.Args().First()
	if dir == "" {
		return fmt.Errorf("usage: raido scan <vault-dir>")
	}

	store, err := storage.NewFS(dir)
	if err != nil {
		return fmt.Errorf("open vault: %w", err)
	}

	metas, err := store.List(".")
	if err != nil {
		return fmt.Errorf("list vault: %w", err)
	}

	files := make([]vault.File, 0, len(metas))
	for _, m := range metas {
		raw, err := store.Read(m.Path)
		if err != nil {
			return fmt.Errorf("read %s: %w", m.Path, err)
		}
		files = append(files, vault.File{Path: m.Path, Text: string(raw)})
	}

	v, err := vault.Build(files)
	if err != nil {
		var dup *apperr.DuplicateTitleError
		if errors.As(err, &dup) {
			return cli.Exit(dup.Error(), 2)
		}
		return err
	}

	rep := report.Build(v, vault.Resolve(v), cmd.StringSlice("root")...)

	switch cmd.String("format") {
	case internal.FormatText:
		return rep.WriteText(os.Stdout)
	default:
		return rep.WriteJSON(os.Stdout)
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// MCP talks JSON-RPC over stdout, so logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	if err := index.Sync(db, store, logger); err != nil {
		return fmt.Errorf("sync index: %w", err)
	}

	svc := vaultservice.NewService(store, db, cfg.Report.Roots)
	return mcpserver.New(store, svc).ServeStdio()
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "raido",
		Usage: "Link graph builder for Markdown vaults: scan for dangling links and orphan notes, or serve a live index",
		Commands: []*cli.Command{
			{
				Name:      "scan",
				Usage:     "Scan a vault directory once and print the findings report",
				ArgsUsage: "<vault-dir>",
				Action:    runScan,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "root",
						Usage: "Note title excluded from orphan detection (repeatable)",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: json or text",
						Value: internal.FormatJSON,
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP server with a live SQLite index and file watcher",
				Action: runServe,
				Flags:  []cli.Flag{configFlag()},
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server over stdio",
				Action: runMCP,
				Flags:  []cli.Flag{configFlag()},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
