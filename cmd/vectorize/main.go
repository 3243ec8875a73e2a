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
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/vectorize/ai"
	"github.com/poiesic/vectorize/ai/openai"
	"github.com/poiesic/vectorize/core"
	"github.com/poiesic/vectorize/storage"
	"github.com/poiesic/vectorize/token"
	"github.com/poiesic/vectorize/vectorize"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "vectorize",
		Usage: "Convert operation logs into durable embedding vector files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "Vectorize an operation log, resuming from the domain's checkpoint",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "ops",
						Aliases:  []string{"o"},
						Usage:    "Path to the operation log file",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "dir",
						Aliases:  []string{"d"},
						Usage:    "Staging root directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "domain",
						Usage:    "Domain name for the staging area",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "https://api.openai.com/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "text-embedding-ada-002",
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "Embedding service credential",
						EnvVars: []string{"OPENAI_API_KEY"},
					},
					&cli.IntFlag{
						Name:  "dimension",
						Usage: "Embedding dimension of the model",
						Value: core.DefaultDimension,
					},
					&cli.IntFlag{
						Name:  "token-limit",
						Usage: "Token budget per embedding request",
						Value: vectorize.DefaultConfig().TokenLimit,
					},
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Number of embedding requests in flight",
						Value: vectorize.DefaultConcurrency,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N embeddings",
						Value: vectorize.DefaultConfig().ReportInterval,
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Show a domain's checkpoint cursor and stored record count",
				Action: statusCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "dir",
						Aliases:  []string{"d"},
						Usage:    "Staging root directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "domain",
						Usage:    "Domain name for the staging area",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "dimension",
						Usage: "Embedding dimension of the model",
						Value: core.DefaultDimension,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
	)
	if key := c.String("api-key"); key != "" {
		ai.WithAPIKey(key)(aiConfig)
	}
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid embedding configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	counter, err := token.NewTiktokenCounterForModel(aiConfig.Model)
	if err != nil {
		// Unknown model: fall back to the default encoding.
		counter, err = token.NewTiktokenCounter(token.DefaultEncoding)
		if err != nil {
			return fmt.Errorf("failed to create tokenizer: %w", err)
		}
	}

	config := &vectorize.Config{
		TokenLimit:     c.Int("token-limit"),
		Concurrency:    c.Int("concurrency"),
		Dimension:      c.Int("dimension"),
		ReportInterval: c.Int("report-interval"),
	}
	if config.Dimension <= 0 {
		return fmt.Errorf("dimension must be greater than 0")
	}
	if config.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be greater than 0")
	}

	fmt.Fprintf(os.Stderr, "Operation log: %s\n", c.String("ops"))
	fmt.Fprintf(os.Stderr, "Staging root: %s\n", c.String("dir"))
	fmt.Fprintf(os.Stderr, "Domain: %s\n", c.String("domain"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", aiConfig.Host)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", aiConfig.Model)
	fmt.Fprintln(os.Stderr)

	v := vectorize.NewVectorizer(embedder, counter, config, os.Stderr)
	failures, err := v.Run(ctx, c.String("ops"), c.String("dir"), c.String("domain"))
	if err != nil {
		return fmt.Errorf("vectorization failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Done. %d items reported failed by the embedding service.\n", failures)
	return nil
}

func statusCommand(c *cli.Context) error {
	if c.Int("dimension") <= 0 {
		return fmt.Errorf("dimension must be greater than 0")
	}

	dir := storage.StagingDir(c.String("dir"), c.String("domain"))
	fmt.Printf("Domain: %s\n", c.String("domain"))

	// Status is a read-only query: never create or repair staging
	// files here.
	cursor, err := storage.InspectCheckpoint(filepath.Join(dir, storage.CheckpointFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("Not initialized.")
			return nil
		}
		return fmt.Errorf("failed to read checkpoint: %w", err)
	}

	var count uint64
	info, err := os.Stat(filepath.Join(dir, storage.VectorFileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat vector file: %w", err)
	}
	if err == nil {
		count = uint64(info.Size()) / uint64(core.RecordSize(c.Int("dimension")))
	}

	fmt.Printf("Checkpoint cursor: %d\n", cursor)
	fmt.Printf("Vector records on disk: %d\n", count)
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
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
