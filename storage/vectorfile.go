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


package storage

import (
	"fmt"
	"io"
	"os"

	"github.com/poiesic/vectorize/core"
)

// VectorFile is a flat binary array of fixed-size embedding records.
// The record at index i occupies bytes [i*recordSize, (i+1)*recordSize);
// each record is the embedding's components as little-endian IEEE 754
// float32 values, back to back. The record size is fixed by the
// configured dimension, never by any batch's length.
type VectorFile struct {
	file       *os.File
	dimension  int
	recordSize int
}

// OpenVectorFile creates or opens the vector file at path for
// random-access read/write, for embeddings of the given dimension.
func OpenVectorFile(path string, dimension int) (*VectorFile, error) {
	if dimension <= 0 {
		return nil, core.ErrInvalidDimension
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening vector file: %w", err)
	}
	return &VectorFile{
		file:       file,
		dimension:  dimension,
		recordSize: core.RecordSize(dimension),
	}, nil
}

// Dimension returns the configured embedding dimension.
func (f *VectorFile) Dimension() int {
	return f.dimension
}

// Write stores embeddings back to back starting at record startIndex
// and forces them durable before returning. Every embedding must have
// the configured dimension; nothing is written otherwise. Re-writing
// the same index with the same embeddings is idempotent, which is what
// makes redoing an uncheckpointed batch after a crash safe.
func (f *VectorFile) Write(startIndex uint64, embeddings [][]float32) error {
	buf := make([]byte, 0, len(embeddings)*f.recordSize)
	for i, embedding := range embeddings {
		if len(embedding) != f.dimension {
			return fmt.Errorf("%w: record %d has %d components, want %d",
				ErrDimensionMismatch, i, len(embedding), f.dimension)
		}
		buf = appendRecord(buf, embedding)
	}

	offset := int64(startIndex) * int64(f.recordSize)
	if _, err := f.file.WriteAt(buf, offset); err != nil {
		return fmt.Errorf("writing vector records at index %d: %w", startIndex, err)
	}
	if err := f.file.Sync(); err != nil {
		return fmt.Errorf("syncing vector file: %w", err)
	}
	return nil
}

// ReadRange reads n records starting at record index start.
func (f *VectorFile) ReadRange(start uint64, n int) ([][]float32, error) {
	buf := make([]byte, n*f.recordSize)
	offset := int64(start) * int64(f.recordSize)
	if _, err := io.ReadFull(io.NewSectionReader(f.file, offset, int64(len(buf))), buf); err != nil {
		return nil, fmt.Errorf("reading vector records [%d, %d): %w", start, start+uint64(n), err)
	}

	embeddings := make([][]float32, n)
	for i := range embeddings {
		embeddings[i] = decodeRecord(buf[i*f.recordSize:(i+1)*f.recordSize], f.dimension)
	}
	return embeddings, nil
}

// Count returns the number of whole records currently on disk.
func (f *VectorFile) Count() (uint64, error) {
	info, err := f.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat vector file: %w", err)
	}
	return uint64(info.Size()) / uint64(f.recordSize), nil
}

// Close closes the underlying file.
func (f *VectorFile) Close() error {
	return f.file.Close()
}
