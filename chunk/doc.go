// Package chunk batches ordered text items under a token budget,
// producing the unit of one embedding request.
package chunk
