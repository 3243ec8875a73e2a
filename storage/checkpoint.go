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
	"encoding/binary"
	"fmt"
	"os"
)

// checkpointSize is the exact file size of a valid checkpoint: one
// big-endian uint64.
const checkpointSize = 8

// Checkpoint is the durable resume cursor: a count of embeddings
// already stored in the vector file. The cursor only ever advances, and
// only after the corresponding vector records have been forced durable,
// so after a crash the vector file always holds at least as many valid
// records as the checkpoint claims.
type Checkpoint struct {
	file   *os.File
	cursor uint64
}

// OpenCheckpoint opens or creates the checkpoint file at path. A file
// of exactly 8 bytes yields its recorded cursor; a missing file or any
// other length means a fresh start — the cursor is zero and the file is
// reinitialized. That is deliberately not an error.
func OpenCheckpoint(path string) (*Checkpoint, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening checkpoint file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat checkpoint file: %w", err)
	}

	c := &Checkpoint{file: file}
	if info.Size() != checkpointSize {
		// Cut the file back before rewriting: an oversized file would
		// otherwise keep its stale tail and read as uninitialized on
		// every subsequent open, discarding the advanced cursor.
		if err := file.Truncate(0); err != nil {
			file.Close()
			return nil, fmt.Errorf("truncating checkpoint: %w", err)
		}
		if err := c.write(0); err != nil {
			file.Close()
			return nil, err
		}
		return c, nil
	}

	buf := make([]byte, checkpointSize)
	if _, err := file.ReadAt(buf, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("reading checkpoint: %w", err)
	}
	c.cursor = binary.BigEndian.Uint64(buf)
	return c, nil
}

// Cursor returns the current cursor value.
func (c *Checkpoint) Cursor() uint64 {
	return c.cursor
}

// Advance durably records that n more embeddings have been stored. The
// in-memory cursor only moves once the new value has been synced, so a
// failed advance leaves the checkpoint consistent with the file.
func (c *Checkpoint) Advance(n uint64) error {
	if err := c.write(c.cursor + n); err != nil {
		return err
	}
	c.cursor += n
	return nil
}

// write overwrites the counter with value and forces it durable.
func (c *Checkpoint) write(value uint64) error {
	buf := make([]byte, checkpointSize)
	binary.BigEndian.PutUint64(buf, value)
	if _, err := c.file.WriteAt(buf, 0); err != nil {
		return fmt.Errorf("writing checkpoint: %w", err)
	}
	if err := c.file.Sync(); err != nil {
		return fmt.Errorf("syncing checkpoint: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (c *Checkpoint) Close() error {
	return c.file.Close()
}

// InspectCheckpoint reads the cursor recorded at path without creating
// or repairing anything. A file that is not exactly 8 bytes reads as
// cursor zero, the same way OpenCheckpoint would treat it. A missing
// file returns an error wrapping os.ErrNotExist.
func InspectCheckpoint(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading checkpoint: %w", err)
	}
	if len(data) != checkpointSize {
		return 0, nil
	}
	return binary.BigEndian.Uint64(data), nil
}
