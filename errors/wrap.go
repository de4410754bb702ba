package errors

import (
	goerrors "errors"
)

// Re-exports of the standard error-chain helpers so callers don't need a
// second errors import alongside this package.

// Unwrap returns the result of calling the Unwrap method on err, if any.
func Unwrap(err error) error {
	return goerrors.Unwrap(err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return goerrors.Is(err, target)
}

// As finds the first error in err's chain that matches target, and if so,
// sets target to that error value and returns true.
func As(err error, target any) bool {
	return goerrors.As(err, target)
}

// Join returns an error that wraps the given errors.
// Any nil error values are discarded.
func Join(errs ...error) error {
	return goerrors.Join(errs...)
}
