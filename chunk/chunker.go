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


package chunk

import (
	"io"

	"github.com/poiesic/vectorize/token"
)

// DefaultTokenLimit is the default per-chunk token budget.
const DefaultTokenLimit = 1_000_000

// TextSource yields ordered text items, returning io.EOF on exhaustion.
type TextSource interface {
	Next() (string, error)
}

// Chunker groups an ordered text item sequence into ordered batches
// whose aggregate token count stays within a budget. Items are never
// split: an item whose own count exceeds the budget still travels as a
// single-item chunk, untruncated. Concatenating all emitted chunks
// reproduces the source sequence exactly — a trailing partial batch is
// flushed when the source is exhausted.
type Chunker struct {
	source  TextSource
	counter token.Counter
	limit   int

	pending []string
	tokens  int
	done    bool
}

// NewChunker creates a chunker over source with the given token budget.
// A non-positive limit falls back to DefaultTokenLimit.
func NewChunker(source TextSource, counter token.Counter, limit int) *Chunker {
	if limit <= 0 {
		limit = DefaultTokenLimit
	}
	return &Chunker{
		source:  source,
		counter: counter,
		limit:   limit,
	}
}

// Next returns the next chunk, or io.EOF after the final chunk has been
// emitted. Any error from the source or the token counter is returned
// as-is and ends iteration.
func (c *Chunker) Next() ([]string, error) {
	if c.done {
		return nil, io.EOF
	}

	for {
		item, err := c.source.Next()
		if err == io.EOF {
			c.done = true
			if len(c.pending) > 0 {
				flushed := c.pending
				c.pending = nil
				c.tokens = 0
				return flushed, nil
			}
			return nil, io.EOF
		}
		if err != nil {
			c.done = true
			return nil, err
		}

		count, err := c.counter.Count(item)
		if err != nil {
			c.done = true
			return nil, err
		}

		if len(c.pending) > 0 && c.tokens+count > c.limit {
			flushed := c.pending
			c.pending = []string{item}
			c.tokens = count
			return flushed, nil
		}

		c.pending = append(c.pending, item)
		c.tokens += count
	}
}
