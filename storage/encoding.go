package storage

import (
	"encoding/binary"
	"math"
)

// appendRecord appends an embedding's on-disk form to buf: each
// component as a little-endian IEEE 754 float32. The encoding is
// explicit so the file format never depends on in-memory layout.
func appendRecord(buf []byte, embedding []float32) []byte {
	for _, v := range embedding {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf
}

// decodeRecord decodes one record of the given dimension.
func decodeRecord(data []byte, dimension int) []float32 {
	embedding := make([]float32, dimension)
	for i := range embedding {
		embedding[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return embedding
}
