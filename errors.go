package vfs

import "fmt"

// InvariantViolation marks a precondition the caller violated, e.g.
// changing the overlay of a path that was never added to the Vfs. These
// are programmer errors, not recoverable runtime conditions, so Vfs
// methods panic with one rather than returning an error.
type InvariantViolation struct {
	Message string
}

func (e InvariantViolation) Error() string { return e.Message }

func newInvariantViolation(format string, args ...any) InvariantViolation {
	return InvariantViolation{Message: fmt.Sprintf(format, args...)}
}
