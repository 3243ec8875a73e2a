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


// Package vectorize orchestrates the conversion of an operation log
// into a durable, resumable vector file.
//
// The pipeline is a chain of pull-based stages: the operation log is
// filtered to text payloads, skipped past the checkpoint, chunked under
// a token budget, dispatched to the embedding service with bounded
// concurrency, and consumed strictly in dispatch order by a single loop
// that writes vectors and advances the checkpoint.
//
// There is no in-process retry: any failure is fatal and the run is
// resumed from the checkpoint, which redoes at most one batch and
// produces identical bytes with a deterministic embedding client.
package vectorize
