// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/docdex"
	"github.com/poiesic/docdex/config"
	"github.com/poiesic/docdex/core"
	"github.com/poiesic/docdex/server"
)

func main() {
	app := &cli.App{
		Name:  "docdex",
		Usage: "Topic-partitioned document search and ingestion service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				Value:   "config.yaml",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the MCP server",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "http",
						Usage: "Serve over HTTP on this address instead of stdio (e.g. :8080)",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search a topic's documents",
				ArgsUsage: "<topic> <query>",
				Action:    searchCommand,
			},
			{
				Name:      "ingest",
				Usage:     "Upload and index a local document under a topic",
				ArgsUsage: "<topic> <file>",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "access-label",
						Usage: "Access label to attach to the document (repeatable)",
					},
				},
			},
			{
				Name:      "reindex",
				Usage:     "Re-extract and re-index every stored document into a topic's index",
				ArgsUsage: "<topic>",
				Action:    reindexCommand,
			},
			{
				Name:   "topics",
				Usage:  "List the configured topics",
				Action: topicsCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// setup loads .env and configures logging before any command runs.
func setup(c *cli.Context) error {
	// Missing .env is fine, environment may be set externally.
	_ = godotenv.Load()
	return setupLogger(c)
}

func openService(c *cli.Context) (*docdex.Service, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	service, err := docdex.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize service: %w", err)
	}
	return service, nil
}

func serveCommand(c *cli.Context) error {
	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	srv, err := server.NewServer(service)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr := c.String("http"); addr != "" {
		slog.Info("serving MCP over HTTP", "addr", addr)
		return srv.RunHTTP(ctx, addr)
	}
	return srv.Run(ctx)
}

func searchCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: docdex search <topic> <query>")
	}
	topic, query := c.Args().Get(0), c.Args().Get(1)

	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	text, err := service.SearchFormatted(c.Context, core.Topic(topic), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if text == "" {
		fmt.Fprintf(os.Stderr, "No results found for %q in topic %q.\n", query, topic)
		return nil
	}
	fmt.Println(text)
	return nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: docdex ingest <topic> <file>")
	}
	topic, path := c.Args().Get(0), c.Args().Get(1)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	result, err := service.Ingest(c.Context, core.Topic(topic), filepath.Base(path),
		data, c.StringSlice("access-label")...)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Ingested %s into %s: %d chunks indexed\n",
		result.File, result.Index, result.Written)
	return nil
}

func reindexCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: docdex reindex <topic>")
	}
	topic := c.Args().Get(0)

	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	results, err := service.Reindex(c.Context, core.Topic(topic))
	if err != nil {
		return fmt.Errorf("reindex failed after %d files: %w", len(results), err)
	}

	chunks := 0
	for _, r := range results {
		chunks += r.Written
	}
	fmt.Fprintf(os.Stderr, "Reindexed %d files, %d chunks\n", len(results), chunks)
	return nil
}

func topicsCommand(c *cli.Context) error {
	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	for _, topic := range service.Topics() {
		fmt.Println(topic)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
