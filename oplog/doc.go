// Package oplog reads newline-delimited JSON operation logs and
// extracts the ordered sequence of text payloads to be vectorized.
//
// The log is always read from the beginning; a malformed record is a
// fatal error rather than a skipped line, because downstream vector
// file offsets are derived purely from payload position.
package oplog
