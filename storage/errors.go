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

import "errors"

var (
	// ErrDimensionMismatch indicates an embedding whose dimension does
	// not match the vector file's configured dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmptyDomain indicates a missing staging domain name.
	ErrEmptyDomain = errors.New("domain is required")

	// ErrInvalidDomain indicates a staging domain name that is not a
	// plain directory name.
	ErrInvalidDomain = errors.New("invalid domain name")
)
