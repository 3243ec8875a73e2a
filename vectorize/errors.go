package vectorize

import "errors"

var (
	// ErrExecutionFault indicates a dispatched embedding unit failed to
	// start or complete for reasons other than the embedding call
	// itself.
	ErrExecutionFault = errors.New("embedding unit execution fault")
)
