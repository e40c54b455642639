// Package invoke implements the client-side invocation core: the
// InvocationContext state machine, its two-pass interceptor pipeline, and
// the FutureHandle callers use to observe completion.
package invoke

import (
	"errors"
	"fmt"
)

// Sentinel errors for the taxonomy an invocation can fail with. Callers
// should use errors.Is/errors.As rather than comparing state directly.
var (
	// ErrWrongPhase is returned when SendRequest is called after the
	// request pass has completed, or when ProceedAsynchronously or
	// SetDiscardResult would move the asynchrony mode between ASYNCHRONOUS
	// and ONE_WAY. GetResult and DiscardResult never return it: they wait
	// for a result, or report the cached terminal outcome.
	ErrWrongPhase = errors.New("invoke: operation called out of phase")

	// ErrNoReceiverBound is returned when the request pass reaches the
	// end of the interceptor chain with no Receiver bound.
	ErrNoReceiverBound = errors.New("invoke: request pass reached chain end with no receiver bound")

	// ErrOneWay is returned when a result is read from an invocation
	// that was marked fire-and-forget.
	ErrOneWay = errors.New("invoke: invocation is one-way, no result to read")

	// ErrCancelled is returned when a result is awaited on an invocation
	// that ended up cancelled.
	ErrCancelled = errors.New("invoke: invocation was cancelled")

	// ErrTimeout is returned when a timed Get exceeds its deadline.
	ErrTimeout = errors.New("invoke: timed out waiting for result")
)

// RemoteFailure wraps an error produced by the transport or remote side
// (via ResultProducer.Produce) so callers can distinguish it from a local
// phase violation. It unwraps to the original cause.
type RemoteFailure struct {
	Cause error
}

// Error implements the error interface.
func (e *RemoteFailure) Error() string {
	return fmt.Sprintf("invoke: remote invocation failed: %v", e.Cause)
}

// Unwrap exposes the original cause for errors.Is/errors.As.
func (e *RemoteFailure) Unwrap() error {
	return e.Cause
}
