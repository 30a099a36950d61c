package sandbox

import (
	"errors"
	"fmt"
)

// Reason classifies an execution failure.
type Reason string

const (
	ReasonRejected Reason = "rejected"
	ReasonSyntax   Reason = "syntax"
	ReasonRuntime  Reason = "runtime"
	ReasonThrown   Reason = "thrown"
	ReasonLimit    Reason = "limit"
	ReasonCanceled Reason = "canceled"
)

// ErrUnsafeFragment is matched by errors.Is for fragments refused by the
// pre-check.
var ErrUnsafeFragment = errors.New("sandbox: fragment contains a blocked pattern")

// ExecutionError is the only error type returned by Executor.Execute.
type ExecutionError struct {
	Reason  Reason
	Message string
	err     error
}

func (e *ExecutionError) Error() string {
	return "Execution failed: " + e.Message
}

// Unwrap exposes the underlying cause (a *script.SyntaxError,
// *script.Exception, *script.LimitError, context error or ErrUnsafeFragment).
func (e *ExecutionError) Unwrap() error { return e.err }

func newExecutionError(reason Reason, err error, format string, args ...any) *ExecutionError {
	return &ExecutionError{Reason: reason, Message: fmt.Sprintf(format, args...), err: err}
}

// IsReason reports whether err is an *ExecutionError with the given reason.
func IsReason(err error, reason Reason) bool {
	var execErr *ExecutionError
	return errors.As(err, &execErr) && execErr.Reason == reason
}
