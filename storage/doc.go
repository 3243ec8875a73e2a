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


// Package storage provides the pipeline's durable artifacts: the vector
// file and its checkpoint, laid out in a per-domain staging directory.
//
// # File formats
//
// The vector file is a flat array of fixed-size records, one embedding
// each, encoded as little-endian IEEE 754 float32 components. A
// record's byte offset is its global index times the record size, which
// is fixed by the configured embedding dimension.
//
// The checkpoint file is exactly 8 bytes: a big-endian uint64 count of
// embeddings already durably stored. Any other length is treated as an
// uninitialized checkpoint, not an error.
//
// # Durability ordering
//
// Callers write vectors (synced) before advancing the checkpoint
// (synced) before starting the next batch. This bounds crash damage to
// the in-flight batch: re-running it overwrites the same byte range
// with identical data.
package storage
