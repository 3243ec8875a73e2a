package vectorize

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/poiesic/vectorize/ai"
	"github.com/poiesic/vectorize/ai/mock"
	"github.com/poiesic/vectorize/core"
	"github.com/poiesic/vectorize/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCounter counts one token per rune.
type testCounter struct{}

func (testCounter) Count(text string) (int, error) {
	return len([]rune(text)), nil
}

func writeOps(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ops")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))
	return path
}

func testConfig(dim, tokenLimit int) *Config {
	return &Config{
		TokenLimit:     tokenLimit,
		Concurrency:    10,
		Dimension:      dim,
		ReportInterval: 1000,
	}
}

func readVectors(t *testing.T, root, domain string, dim int, n int) [][]float32 {
	t.Helper()
	f, err := storage.OpenVectorFile(
		filepath.Join(storage.StagingDir(root, domain), storage.VectorFileName), dim)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.ReadRange(0, n)
	require.NoError(t, err)
	return got
}

func readRawStaging(t *testing.T, root, domain string) (vectors, progress []byte) {
	t.Helper()
	dir := storage.StagingDir(root, domain)
	vectors, err := os.ReadFile(filepath.Join(dir, storage.VectorFileName))
	require.NoError(t, err)
	progress, err = os.ReadFile(filepath.Join(dir, storage.CheckpointFileName))
	require.NoError(t, err)
	return vectors, progress
}

const threeOps = `{"op":"Inserted","id":"1","string":"a"}
{"op":"Inserted","id":"2","string":"b"}
{"op":"Inserted","id":"3","string":"c"}
`

func TestVectorizerEndToEnd(t *testing.T) {
	ops := writeOps(t, threeOps)
	root := t.TempDir()

	v := NewVectorizer(mock.NewEmbedder(2), testCounter{}, testConfig(2, 1000), io.Discard)
	failures, err := v.Run(context.Background(), ops, root, "docs")
	require.NoError(t, err)
	assert.Equal(t, 0, failures)

	// Exactly three records, in input order.
	got := readVectors(t, root, "docs", 2, 3)
	want := [][]float32{
		mock.DeterministicVector("a", 2),
		mock.DeterministicVector("b", 2),
		mock.DeterministicVector("c", 2),
	}
	assert.Equal(t, want, got)

	// The checkpoint file encodes 3.
	_, progress := readRawStaging(t, root, "docs")
	require.Len(t, progress, 8)
	assert.Equal(t, uint64(3), binary.BigEndian.Uint64(progress))
}

func TestVectorizerSkipsOperationsWithoutPayload(t *testing.T) {
	ops := writeOps(t, `{"op":"Inserted","id":"1","string":"a"}
{"op":"Deleted","id":"1"}
{"op":"Changed","id":"2","string":"b"}
`)
	root := t.TempDir()

	v := NewVectorizer(mock.NewEmbedder(2), testCounter{}, testConfig(2, 1000), io.Discard)
	_, err := v.Run(context.Background(), ops, root, "docs")
	require.NoError(t, err)

	got := readVectors(t, root, "docs", 2, 2)
	assert.Equal(t, [][]float32{
		mock.DeterministicVector("a", 2),
		mock.DeterministicVector("b", 2),
	}, got)
}

func TestVectorizerMalformedLogIsFatal(t *testing.T) {
	ops := writeOps(t, `{"op":"Inserted","id":"1","string":"a"}
not json at all
`)
	root := t.TempDir()

	v := NewVectorizer(mock.NewEmbedder(2), testCounter{}, testConfig(2, 1000), io.Discard)
	_, err := v.Run(context.Background(), ops, root, "docs")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMalformedOperation)
}

func TestVectorizerAccumulatesFailureCounts(t *testing.T) {
	ops := writeOps(t, threeOps)
	root := t.TempDir()

	embedder := mock.NewEmbedder(2)
	embedder.EmbedBatchFunc = func(ctx context.Context, texts []string) (*ai.BatchResult, error) {
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = make([]float32, 2)
		}
		return &ai.BatchResult{Embeddings: vectors, Failed: 1}, nil
	}

	// Token limit of 1 forces one chunk per item.
	v := NewVectorizer(embedder, testCounter{}, testConfig(2, 1), io.Discard)
	failures, err := v.Run(context.Background(), ops, root, "docs")
	require.NoError(t, err)
	assert.Equal(t, 3, failures)
}

func TestVectorizerRejectsMisalignedBatch(t *testing.T) {
	ops := writeOps(t, threeOps)
	root := t.TempDir()

	embedder := mock.NewEmbedder(2)
	embedder.EmbedBatchFunc = func(ctx context.Context, texts []string) (*ai.BatchResult, error) {
		// One embedding short: positional alignment is broken.
		vectors := make([][]float32, len(texts)-1)
		for i := range vectors {
			vectors[i] = make([]float32, 2)
		}
		return &ai.BatchResult{Embeddings: vectors, Failed: 1}, nil
	}

	v := NewVectorizer(embedder, testCounter{}, testConfig(2, 1000), io.Discard)
	_, err := v.Run(context.Background(), ops, root, "docs")
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrBatchMisaligned)
}

func TestVectorizerIdempotentResume(t *testing.T) {
	log := `{"op":"Inserted","id":"1","string":"aa"}
{"op":"Inserted","id":"2","string":"bb"}
{"op":"Inserted","id":"3","string":"cc"}
{"op":"Inserted","id":"4","string":"dd"}
{"op":"Inserted","id":"5","string":"ee"}
{"op":"Inserted","id":"6","string":"ff"}
`
	cfg := testConfig(2, 4) // two items per chunk

	// Reference: one uninterrupted run.
	refOps := writeOps(t, log)
	refRoot := t.TempDir()
	v := NewVectorizer(mock.NewEmbedder(2), testCounter{}, cfg, io.Discard)
	_, err := v.Run(context.Background(), refOps, refRoot, "docs")
	require.NoError(t, err)
	wantVectors, wantProgress := readRawStaging(t, refRoot, "docs")

	// Interrupted: the embedder fails after two successful calls.
	ops := writeOps(t, log)
	root := t.TempDir()
	var calls atomic.Int64
	failing := mock.NewEmbedder(2)
	failing.EmbedBatchFunc = func(ctx context.Context, texts []string) (*ai.BatchResult, error) {
		if calls.Add(1) > 2 {
			return nil, errors.New("service went away")
		}
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			vectors[i] = mock.DeterministicVector(text, 2)
		}
		return &ai.BatchResult{Embeddings: vectors}, nil
	}

	interrupted := NewVectorizer(failing, testCounter{}, cfg, io.Discard)
	_, err = interrupted.Run(context.Background(), ops, root, "docs")
	require.Error(t, err)

	// Restart with a healthy client and run to completion.
	resumed := NewVectorizer(mock.NewEmbedder(2), testCounter{}, cfg, io.Discard)
	_, err = resumed.Run(context.Background(), ops, root, "docs")
	require.NoError(t, err)

	gotVectors, gotProgress := readRawStaging(t, root, "docs")
	assert.True(t, bytes.Equal(wantVectors, gotVectors),
		"resumed run must produce bytes identical to an uninterrupted run")
	assert.Equal(t, wantProgress, gotProgress)
}

func TestVectorizerCrashAfterWriteBeforeCheckpoint(t *testing.T) {
	log := `{"op":"Inserted","id":"1","string":"aa"}
{"op":"Inserted","id":"2","string":"bb"}
{"op":"Inserted","id":"3","string":"cc"}
{"op":"Inserted","id":"4","string":"dd"}
`
	cfg := testConfig(2, 4) // two items per chunk

	// Reference run.
	refOps := writeOps(t, log)
	refRoot := t.TempDir()
	v := NewVectorizer(mock.NewEmbedder(2), testCounter{}, cfg, io.Discard)
	_, err := v.Run(context.Background(), refOps, refRoot, "docs")
	require.NoError(t, err)
	wantVectors, wantProgress := readRawStaging(t, refRoot, "docs")

	// Simulate a crash between a batch's vector write and its
	// checkpoint write: the first chunk's records are on disk but the
	// cursor still reads zero.
	root := t.TempDir()
	dir, err := storage.EnsureStagingDir(root, "docs")
	require.NoError(t, err)
	vf, err := storage.OpenVectorFile(filepath.Join(dir, storage.VectorFileName), 2)
	require.NoError(t, err)
	require.NoError(t, vf.Write(0, [][]float32{
		mock.DeterministicVector("aa", 2),
		mock.DeterministicVector("bb", 2),
	}))
	require.NoError(t, vf.Close())

	// Restart: the unflushed batch is redone at the same offset.
	ops := writeOps(t, log)
	restarted := NewVectorizer(mock.NewEmbedder(2), testCounter{}, cfg, io.Discard)
	_, err = restarted.Run(context.Background(), ops, root, "docs")
	require.NoError(t, err)

	gotVectors, gotProgress := readRawStaging(t, root, "docs")
	assert.True(t, bytes.Equal(wantVectors, gotVectors),
		"redoing the batch must overwrite the same offset with identical bytes")
	assert.Equal(t, wantProgress, gotProgress)
}

func TestVectorizerContextCanceled(t *testing.T) {
	ops := writeOps(t, threeOps)
	root := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := NewVectorizer(mock.NewEmbedder(2), testCounter{}, testConfig(2, 1000), io.Discard)
	_, err := v.Run(ctx, ops, root, "docs")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
