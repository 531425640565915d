package gae

import "github.com/pkg/errors"

// BufferError implements errors unique to rollout segments and the
// advantage computations performed on them.
type BufferError struct {
	Op  string
	Err error
}

// Error satisifes the error interface
func (e *BufferError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Cause returns the underlying error so that errors.Cause can unwrap
// a BufferError
func (e *BufferError) Cause() error {
	return e.Err
}

var errDimensionMismatch = errors.New("dimension mismatch")

var errEmptySegment = errors.New("segment empty")

// mismatch returns a dimension mismatch error for operation op
func mismatch(op, what string, want, have int) error {
	return &BufferError{
		Op:  op,
		Err: errors.Wrapf(errDimensionMismatch, "%v\n\twant(%v)\n\thave(%v)", what, want, have),
	}
}

// IsDimensionMismatch returns whether or not an error reports that
// the lengths of aligned sequences (rewards, values, log-probabilities,
// observations, actions) disagree.
func IsDimensionMismatch(err error) bool {
	return errors.Cause(err) == errDimensionMismatch
}

// IsEmptySegment returns whether or not an error reports that an
// operation was attempted on a segment with no steps.
func IsEmptySegment(err error) bool {
	return errors.Cause(err) == errEmptySegment
}
