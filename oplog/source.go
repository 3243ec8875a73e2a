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


package oplog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/poiesic/vectorize/core"
)

// Source reads an operation log and yields its text payloads in log
// order. Each line of the log is one JSON-encoded operation; operations
// without a payload are omitted. The same log always yields the same
// payload sequence, which is what makes checkpoint-based resumption
// (skip by payload count) sound.
type Source struct {
	file    *os.File
	scanner *bufio.Scanner
	line    int
}

// Open opens the operation log at path read-only, positioned at the
// start. The caller must Close the source when done.
func Open(path string) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening operation log: %w", err)
	}
	return NewSource(file), nil
}

// NewSource wraps an already-open log file. Reading begins at the
// file's current position, which for a fresh open is offset zero.
func NewSource(file *os.File) *Source {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Source{
		file:    file,
		scanner: scanner,
	}
}

// maxLineBytes bounds a single log line. Operation payloads are
// documents, not whole corpora; 16 MiB is far beyond anything the
// producer emits.
const maxLineBytes = 16 * 1024 * 1024

// Next returns the next text payload, or io.EOF when the log is
// exhausted. A line that fails to decode returns an error wrapping
// core.ErrMalformedOperation; the source is unusable afterwards.
func (s *Source) Next() (string, error) {
	for s.scanner.Scan() {
		s.line++
		// encoding/json silently substitutes invalid UTF-8; the log
		// contract requires it to be fatal.
		if !utf8.Valid(s.scanner.Bytes()) {
			return "", fmt.Errorf("line %d: %w: invalid UTF-8", s.line, core.ErrMalformedOperation)
		}
		var op core.Operation
		if err := json.Unmarshal(s.scanner.Bytes(), &op); err != nil {
			return "", fmt.Errorf("line %d: %w: %v", s.line, core.ErrMalformedOperation, err)
		}
		if text, ok := op.Payload(); ok {
			return text, nil
		}
	}
	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("reading operation log: %w", err)
	}
	return "", io.EOF
}

// Skip discards the first n payload items. It is used on resumption to
// advance past items whose embeddings are already durably stored.
func (s *Source) Skip(n uint64) error {
	for i := uint64(0); i < n; i++ {
		if _, err := s.Next(); err != nil {
			if err == io.EOF {
				return fmt.Errorf("operation log shorter than checkpoint: skipped %d of %d items", i, n)
			}
			return err
		}
	}
	return nil
}

// Close closes the underlying log file.
func (s *Source) Close() error {
	return s.file.Close()
}

var _ io.Closer = (*Source)(nil)
