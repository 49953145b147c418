package ndarray

import "github.com/pkg/errors"

// Sentinel errors for the array engine. Every error returned by this package
// wraps one of them, so callers can match with errors.Is.
var (
	// ErrShape reports a reshape whose element count differs from the source,
	// or an invalid axis/permutation.
	ErrShape = errors.New("invalid shape")

	// ErrShapeMismatch reports operands of a binary operation whose shapes disagree.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrBroadcast reports a broadcast to an incompatible shape.
	ErrBroadcast = errors.New("incompatible broadcast")

	// ErrUnsupported reports an operation outside what the engine implements,
	// e.g. negative-step slicing or batched matmul.
	ErrUnsupported = errors.New("unsupported operation")

	// ErrAllocation reports that a device could not allocate a buffer.
	ErrAllocation = errors.New("allocation failed")
)
