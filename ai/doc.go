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


// Package ai defines the embedding service boundary.
//
// The pipeline depends on the Embedder abstraction rather than any
// concrete client, so the OpenAI-compatible implementation in ai/openai
// and the deterministic test double in ai/mock are interchangeable.
//
// The boundary contract matters more than the implementation: results
// are positionally aligned with the request, full-length even under
// partial failure, and never retried at this layer.
package ai
