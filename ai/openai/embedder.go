package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/poiesic/vectorize/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
type Embedder struct {
	embedder embeddings.Embedder
	logger   *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder creates an embedder using the provided configuration.
func NewEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.APIKey),
		openai.WithEmbeddingModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder: embedder,
		logger:   slog.Default().With("component", "openai-embedder"),
	}, nil
}

// EmbedBatch generates embeddings for texts in order.
//
// The OpenAI API either embeds a whole batch or rejects it, so Failed
// is always zero here; partial-failure counts come from services that
// report them.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) (*ai.BatchResult, error) {
	e.logger.Debug("generating embeddings", "count", len(texts))

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, classify(err)
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: requested %d, received %d",
			ai.ErrBatchMisaligned, len(texts), len(vectors))
	}

	return &ai.BatchResult{Embeddings: vectors}, nil
}

// classify separates transport failures from service failures.
// Transport errors pass through as I/O errors; anything the service
// itself produced wraps ErrEmbeddingService.
func classify(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("embedding transport: %w", err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", ai.ErrEmbeddingService, err)
}
