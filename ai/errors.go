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


package ai

import "errors"

var (
	// ErrEmbeddingService indicates the embedding service rejected or
	// failed a request (as opposed to a transport-level failure).
	ErrEmbeddingService = errors.New("embedding service error")

	// ErrBatchMisaligned indicates the service returned a different
	// number of embeddings than texts requested.
	ErrBatchMisaligned = errors.New("embedding batch misaligned with request")
)
