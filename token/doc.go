// Package token provides the tokenizer boundary used to budget
// embedding request batches.
package token
