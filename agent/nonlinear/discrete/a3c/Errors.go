package a3c

import (
	"github.com/pkg/errors"
	"github.com/samuelfneumann/goa3c/buffer/gae"
)

// ModelError implements errors returned by an ActorCritic
type ModelError struct {
	Op  string
	Err error
}

// Error satisfies the error interface
func (e *ModelError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Cause returns the underlying error so that errors.Cause can unwrap
// a ModelError
func (e *ModelError) Cause() error {
	return e.Err
}

var errInvalidConfig = errors.New("invalid configuration")

var errDimensionMismatch = errors.New("dimension mismatch")

// configError returns an invalid configuration error for operation op
func configError(op, format string, args ...interface{}) error {
	return &ModelError{
		Op:  op,
		Err: errors.Wrapf(errInvalidConfig, format, args...),
	}
}

// mismatch returns a dimension mismatch error for operation op
func mismatch(op, what string, want, have int) error {
	return &ModelError{
		Op: op,
		Err: errors.Wrapf(errDimensionMismatch,
			"%v\n\twant(%v)\n\thave(%v)", what, want, have),
	}
}

// IsConfigError returns whether or not an error reports an invalid
// Config
func IsConfigError(err error) bool {
	return errors.Cause(err) == errInvalidConfig
}

// IsDimensionMismatch returns whether or not an error reports an input
// of the wrong width, or rollout sequences whose lengths disagree.
func IsDimensionMismatch(err error) bool {
	return errors.Cause(err) == errDimensionMismatch ||
		gae.IsDimensionMismatch(err)
}
