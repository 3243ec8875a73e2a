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

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/vectorize/ai"
)

// DefaultConcurrency is the default number of embedding requests in
// flight.
const DefaultConcurrency = 10

// ChunkSource yields ordered chunks of text items, returning io.EOF on
// exhaustion.
type ChunkSource interface {
	Next() ([]string, error)
}

// Result is the outcome of embedding one chunk.
type Result struct {
	// Size is the number of text items in the chunk.
	Size int
	// Embeddings is the chunk's embedding batch, positionally aligned
	// with its items.
	Embeddings [][]float32
	// Failed is the service-reported count of items that failed to
	// embed within the chunk.
	Failed int
}

// outcome travels from a worker to the consumer through the slot
// allocated at dispatch time.
type outcome struct {
	result *Result
	err    error
}

// Scheduler dispatches chunks to an embedder with bounded concurrency
// and yields results strictly in dispatch order: a chunk that finishes
// early is held until every earlier chunk has been yielded. Downstream
// file offsets are computed purely from cumulative position, so this
// ordering is what keeps the vector file aligned with the source.
//
// At most width chunks are in flight; the window of undelivered results
// is the pipeline's only backpressure.
type Scheduler struct {
	pool   *ants.Pool
	window chan chan outcome
	cancel context.CancelFunc
}

// NewScheduler starts dispatching chunks from source to embedder.
// A non-positive width falls back to DefaultConcurrency. The caller
// must Close the scheduler; outstanding work is abandoned, not awaited.
func NewScheduler(ctx context.Context, source ChunkSource, embedder ai.Embedder, width int) (*Scheduler, error) {
	if width <= 0 {
		width = DefaultConcurrency
	}

	pool, err := ants.NewPool(width)
	if err != nil {
		return nil, fmt.Errorf("creating embedding worker pool: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Scheduler{
		pool:   pool,
		window: make(chan chan outcome, width),
		cancel: cancel,
	}
	go s.feed(ctx, source, embedder)
	return s, nil
}

// feed pulls chunks and submits them in order. Each chunk gets a slot
// in the window at dispatch time; the slot's position, not the worker's
// completion time, determines when its result is yielded.
func (s *Scheduler) feed(ctx context.Context, source ChunkSource, embedder ai.Embedder) {
	defer close(s.window)

	for {
		chunk, err := source.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			s.deliver(ctx, immediate(outcome{err: err}))
			return
		}

		slot := make(chan outcome, 1)
		size := len(chunk)
		submitErr := s.pool.Submit(func() {
			result, embedErr := embedder.EmbedBatch(ctx, chunk)
			if embedErr != nil {
				slot <- outcome{err: embedErr}
				return
			}
			slot <- outcome{result: &Result{
				Size:       size,
				Embeddings: result.Embeddings,
				Failed:     result.Failed,
			}}
		})
		if submitErr != nil {
			slot = immediate(outcome{err: fmt.Errorf("%w: %v", ErrExecutionFault, submitErr)})
		}

		if !s.deliver(ctx, slot) {
			return
		}
	}
}

// deliver enqueues a slot, blocking while the window is full. Returns
// false once the scheduler is being torn down.
func (s *Scheduler) deliver(ctx context.Context, slot chan outcome) bool {
	select {
	case s.window <- slot:
		return true
	case <-ctx.Done():
		return false
	}
}

func immediate(out outcome) chan outcome {
	slot := make(chan outcome, 1)
	slot <- out
	return slot
}

// Next returns the next chunk's result in dispatch order, blocking on
// the oldest outstanding chunk. It returns io.EOF after the final
// result. A unit's failure surfaces here, at that unit's ordinal turn;
// results yielded before it remain valid.
func (s *Scheduler) Next() (*Result, error) {
	slot, ok := <-s.window
	if !ok {
		return nil, io.EOF
	}
	out := <-slot
	if out.err != nil {
		return nil, out.err
	}
	return out.result, nil
}

// Close tears the scheduler down, abandoning in-flight units and
// discarding their eventual results.
func (s *Scheduler) Close() {
	s.cancel()
	s.pool.Release()
}
