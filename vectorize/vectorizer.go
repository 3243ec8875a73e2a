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


package vectorize

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/poiesic/vectorize/ai"
	"github.com/poiesic/vectorize/chunk"
	"github.com/poiesic/vectorize/core"
	"github.com/poiesic/vectorize/oplog"
	"github.com/poiesic/vectorize/storage"
	"github.com/poiesic/vectorize/token"
)

// Config holds configuration for a vectorization run.
type Config struct {
	// TokenLimit is the per-chunk token budget.
	TokenLimit int

	// Concurrency is the number of embedding requests in flight.
	Concurrency int

	// Dimension is the embedding dimension, fixed by the embedding
	// service.
	Dimension int

	// ReportInterval is how often to report progress (number of
	// embeddings).
	ReportInterval int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		TokenLimit:     chunk.DefaultTokenLimit,
		Concurrency:    DefaultConcurrency,
		Dimension:      core.DefaultDimension,
		ReportInterval: 1000,
	}
}

// Vectorizer converts an operation log into a durable vector file,
// resuming from the domain's checkpoint. One Vectorizer run owns the
// domain's staging files exclusively.
type Vectorizer struct {
	embedder ai.Embedder
	counter  token.Counter
	config   *Config
	progress io.Writer
	logger   *slog.Logger
}

// NewVectorizer creates a vectorizer.
// progress: where to write progress output (typically os.Stderr)
func NewVectorizer(embedder ai.Embedder, counter token.Counter, config *Config, progress io.Writer) *Vectorizer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Vectorizer{
		embedder: embedder,
		counter:  counter,
		config:   config,
		progress: progress,
		logger:   slog.Default().With("component", "vectorizer"),
	}
}

// Run vectorizes the operation log at opsPath into the domain's staging
// directory under stagingRoot. It resumes from the stored checkpoint,
// and returns the total service-reported failure count on clean
// exhaustion of the log.
//
// Per batch, in order: vectors are written and synced, then the
// checkpoint advances and syncs, then the next batch may be consumed.
// A crash therefore loses at most the in-flight batch, and re-running
// it after restart rewrites the same offsets with identical bytes.
func (v *Vectorizer) Run(ctx context.Context, opsPath, stagingRoot, domain string) (int, error) {
	dir, err := storage.EnsureStagingDir(stagingRoot, domain)
	if err != nil {
		return 0, err
	}

	vectors, err := storage.OpenVectorFile(filepath.Join(dir, storage.VectorFileName), v.config.Dimension)
	if err != nil {
		return 0, err
	}
	defer vectors.Close()

	checkpoint, err := storage.OpenCheckpoint(filepath.Join(dir, storage.CheckpointFileName))
	if err != nil {
		return 0, err
	}
	defer checkpoint.Close()

	source, err := oplog.Open(opsPath)
	if err != nil {
		return 0, err
	}
	defer source.Close()

	cursor := checkpoint.Cursor()
	v.logger.Info("starting vectorization", "domain", domain, "cursor", cursor)
	if err := source.Skip(cursor); err != nil {
		return 0, err
	}

	chunker := chunk.NewChunker(source, v.counter, v.config.TokenLimit)
	scheduler, err := NewScheduler(ctx, chunker, v.embedder, v.config.Concurrency)
	if err != nil {
		return 0, err
	}
	defer scheduler.Close()

	tracker := NewProgressTracker(v.progress, v.config.ReportInterval)
	tracker.Start(int(cursor))

	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			return failures, err
		}

		result, err := scheduler.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return failures, err
		}

		if len(result.Embeddings) != result.Size {
			return failures, fmt.Errorf("%w: chunk has %d items, batch has %d embeddings",
				ai.ErrBatchMisaligned, result.Size, len(result.Embeddings))
		}

		if err := vectors.Write(checkpoint.Cursor(), result.Embeddings); err != nil {
			return failures, err
		}
		if err := checkpoint.Advance(uint64(len(result.Embeddings))); err != nil {
			return failures, err
		}

		failures += result.Failed
		tracker.Increment(len(result.Embeddings))
		v.logger.Debug("batch stored",
			"records", len(result.Embeddings),
			"cursor", checkpoint.Cursor(),
			"failed", result.Failed)
	}

	tracker.Finish()
	v.logger.Info("vectorization complete",
		"domain", domain,
		"cursor", checkpoint.Cursor(),
		"failures", failures,
		"elapsed", tracker.Elapsed())
	return failures, nil
}
