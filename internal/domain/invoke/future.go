package invoke

import (
	"runtime"
	"time"
)

// FutureHandle is the caller-held handle for an invocation that has been
// upgraded to (or started as) asynchronous (§4.5). It wraps exactly one
// InvocationContext for its whole lifetime.
type FutureHandle struct {
	ctx    *InvocationContext
	closed bool
}

// NewFutureHandle wraps ctx and arms the finalizer-based abandonment
// safety net described in §4.6: if the caller drops the handle without
// ever calling Get, GetTimeout, or Close, the producer is still
// discarded instead of leaking transport resources forever.
func NewFutureHandle(ctx *InvocationContext) *FutureHandle {
	f := &FutureHandle{ctx: ctx}
	runtime.SetFinalizer(f, (*FutureHandle).abandon)
	return f
}

// abandon is the finalizer entry point (§4.6). It never blocks: if the
// result has not arrived yet it leaves the context alone (ResultReady
// will discard it itself, since SetDiscardResult already marked it
// one-way by the time a handle is ever abandoned) and otherwise discards
// an already-ready result that nobody ever consumed.
func (f *FutureHandle) abandon() {
	if f.ctx == nil {
		return
	}
	_ = f.ctx.SetDiscardResult()
}

// Close discharges the abandonment safety net deterministically — for
// tests, and for callers that know a handle is no longer needed without
// waiting for garbage collection. Idempotent.
func (f *FutureHandle) Close() {
	if f.closed {
		return
	}
	f.closed = true
	runtime.SetFinalizer(f, nil)
	_ = f.ctx.SetDiscardResult()
}

// IsDone reports whether the invocation has reached any terminal state.
func (f *FutureHandle) IsDone() bool {
	return f.ctx.State().IsTerminal()
}

// IsCancelled reports whether the invocation resolved via cancellation.
func (f *FutureHandle) IsCancelled() bool {
	return f.ctx.State() == StateCancelled
}

// Cancel requests cancellation of the invocation through RequestCancel.
// mayInterrupt is accepted and ignored: it is not passed to the Receiver,
// and the core itself never interrupts anything. Returns RequestCancel's
// answer.
func (f *FutureHandle) Cancel(mayInterrupt bool) bool {
	_ = mayInterrupt
	return f.ctx.RequestCancel()
}

// Get blocks until the invocation resolves and returns its result. A
// one-way invocation (SetDiscardResult or Close was called) returns
// ErrOneWay once its producer has been discarded, instead of a result.
func (f *FutureHandle) Get() (any, error) {
	return f.ctx.GetResult()
}

// GetTimeout blocks until the invocation resolves or d elapses, whichever
// comes first, returning ErrTimeout on expiry. The invocation itself is
// left running; GetTimeout only abandons this one wait.
func (f *FutureHandle) GetTimeout(d time.Duration) (any, error) {
	c := f.ctx
	deadline := time.Now().Add(d)
	timer := time.AfterFunc(d, func() { c.mu.Lock(); c.cond.Broadcast(); c.mu.Unlock() })
	defer timer.Stop()
	c.mu.Lock()
	for c.state == StateWaiting || c.state == StateCancelReq || c.state == StateConsuming {
		if !time.Now().Before(deadline) {
			c.mu.Unlock()
			return nil, ErrTimeout
		}
		c.cond.Wait()
	}
	c.mu.Unlock()
	return c.GetResult()
}

// Context exposes the underlying InvocationContext for adapters that
// need to inspect locator/attachment state alongside the future.
func (f *FutureHandle) Context() *InvocationContext { return f.ctx }
