package ai

import "context"

// BatchResult is the outcome of one embedding request.
//
// Embeddings are positionally aligned with the request's texts and are
// always full-length: when the service reports per-item failures, the
// failed positions still hold a vector (whatever the service
// substituted, typically zeros) so that downstream fixed-offset writes
// stay aligned. Failed is informational only.
type BatchResult struct {
	// Embeddings holds one fixed-dimension vector per input text, in
	// input order.
	Embeddings [][]float32

	// Failed is the number of texts the service reported as failed to
	// embed within this batch.
	Failed int
}

// Embedder generates vector embeddings for ordered batches of text.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedBatch embeds texts in order. On success the result contains
	// exactly one embedding per text. Errors are classified: service
	// failures wrap ErrEmbeddingService, transport failures are
	// returned as I/O errors. Retry policy is owned by the caller's
	// caller — implementations must not retry.
	EmbedBatch(ctx context.Context, texts []string) (*BatchResult, error)
}
