package mock

import (
	"context"
	"hash/fnv"
	"sync/atomic"

	"github.com/poiesic/vectorize/ai"
)

// Embedder is a test double for ai.Embedder. By default it produces
// deterministic vectors derived from each text's hash, so repeated runs
// over the same input yield bit-identical embeddings — the property the
// pipeline's resumability tests depend on. Custom behavior can be
// injected via the function field.
type Embedder struct {
	// EmbedBatchFunc is called by EmbedBatch if set.
	EmbedBatchFunc func(ctx context.Context, texts []string) (*ai.BatchResult, error)

	dimension int
	callCount atomic.Int64
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder creates a mock embedder producing vectors of the given
// dimension.
func NewEmbedder(dimension int) *Embedder {
	return &Embedder{dimension: dimension}
}

// EmbedBatch generates deterministic embeddings for texts in order.
func (m *Embedder) EmbedBatch(ctx context.Context, texts []string) (*ai.BatchResult, error) {
	m.callCount.Add(1)

	if m.EmbedBatchFunc != nil {
		return m.EmbedBatchFunc(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = DeterministicVector(text, m.dimension)
	}
	return &ai.BatchResult{Embeddings: vectors}, nil
}

// CallCount returns the number of EmbedBatch calls.
func (m *Embedder) CallCount() int {
	return int(m.callCount.Load())
}

// DeterministicVector creates a reproducible embedding vector from
// text. The same text always produces the same vector.
func DeterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000) / 1000.0
	}
	return vector
}
