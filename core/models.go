package core

// DefaultDimension is the embedding dimension produced by the default
// embedding model (text-embedding-ada-002).
const DefaultDimension = 1536

// FloatWidth is the on-disk byte width of a single vector component.
const FloatWidth = 4

// RecordSize returns the byte width of one stored embedding record for
// the given dimension. It is a function of the configured dimension
// only, never of any particular batch.
func RecordSize(dimension int) int {
	return dimension * FloatWidth
}

// OpType discriminates operation log records.
type OpType string

const (
	// OpInserted records a new document with its text.
	OpInserted OpType = "Inserted"
	// OpChanged records an updated document with its new text.
	OpChanged OpType = "Changed"
	// OpDeleted records a document removal and carries no text.
	OpDeleted OpType = "Deleted"
)

// Operation is a single record of the operation log. Records are
// immutable once decoded; only Inserted and Changed operations carry a
// text payload.
type Operation struct {
	Op   OpType `json:"op"`
	ID   string `json:"id"`
	Text string `json:"string,omitempty"`
}

// Payload returns the operation's text payload and whether it has one.
// Operations without a payload are not vectorized and do not consume a
// position in the vector file.
func (o *Operation) Payload() (string, bool) {
	switch o.Op {
	case OpInserted, OpChanged:
		return o.Text, true
	default:
		return "", false
	}
}
