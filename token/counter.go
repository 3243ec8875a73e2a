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


package token

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the tokenizer encoding used by OpenAI embedding
// models.
const DefaultEncoding = "cl100k_base"

// Counter reports how many tokens a text occupies in the embedding
// service's tokenizer. Counts must be deterministic across runs:
// chunk boundaries, and therefore resumption behavior, depend on them.
// Implementations must be safe for concurrent use.
type Counter interface {
	// Count returns the number of tokens in text.
	Count(text string) (int, error)
}

// TiktokenCounter implements Counter using the tiktoken BPE vocabularies.
type TiktokenCounter struct {
	encoder *tiktoken.Tiktoken
}

var _ Counter = (*TiktokenCounter)(nil)

// NewTiktokenCounter creates a counter for the named tiktoken encoding,
// e.g. "cl100k_base".
func NewTiktokenCounter(encoding string) (*TiktokenCounter, error) {
	encoder, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("loading tiktoken encoding %q: %w", encoding, err)
	}
	return &TiktokenCounter{encoder: encoder}, nil
}

// NewTiktokenCounterForModel creates a counter matching the tokenizer of
// the named embedding model, e.g. "text-embedding-ada-002".
func NewTiktokenCounterForModel(model string) (*TiktokenCounter, error) {
	encoder, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("loading tiktoken encoding for model %q: %w", model, err)
	}
	return &TiktokenCounter{encoder: encoder}, nil
}

// Count returns the number of BPE tokens in text.
func (c *TiktokenCounter) Count(text string) (int, error) {
	return len(c.encoder.Encode(text, nil, nil)), nil
}
