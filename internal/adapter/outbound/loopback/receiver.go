// Package loopback is a reference Receiver/ResultProducer pair that
// dispatches an invocation to a local handler function on a bounded
// worker pool, standing in for a real wire transport (SPEC_FULL
// "Loopback transport"). It is what the demo CLI and the core's own
// scenario tests schedule invocations onto.
package loopback

import (
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/Sentinel-Gate/invoke-core/internal/domain/invoke"
)

// Handler executes one invocation and returns its result or error. It
// runs on a pool goroutine, never on the caller's goroutine.
type Handler func(ctx *invoke.InvocationContext) (any, error)

// Receiver schedules invocations onto a fixed-size worker pool (§6). A
// panic inside Handler is recovered by runHandler and reported through
// ctx.Failed rather than crashing the worker.
type Receiver struct {
	pool    *pool.Pool
	handler Handler
	latency time.Duration
}

// NewReceiver builds a Receiver with workers goroutines and an optional
// artificial per-call latency (useful for demoing the asynchrony-upgrade
// and timeout scenarios from spec §8).
func NewReceiver(workers int, latency time.Duration, handler Handler) *Receiver {
	if workers < 1 {
		workers = 1
	}
	p := pool.New().WithMaxGoroutines(workers)
	return &Receiver{pool: p, handler: handler, latency: latency}
}

// ProcessInvocation schedules ctx's handler call on the pool. It always
// returns nil: pool.Go cannot itself fail (when every worker is busy it
// blocks the calling goroutine until one frees up), so every outcome —
// success, handler error, or panic — is reported
// asynchronously through ResultReady/Failed rather than this return
// value.
func (r *Receiver) ProcessInvocation(ctx *invoke.InvocationContext, _ *invoke.ReceiverInvocationContext) error {
	r.pool.Go(func() {
		if r.latency > 0 {
			time.Sleep(r.latency)
		}
		val, err := r.runHandler(ctx)
		if err != nil {
			ctx.Failed(err)
			return
		}
		ctx.ResultReady(&producer{val: val})
	})
	return nil
}

// runHandler invokes the handler, converting a panic into an error so it
// surfaces through ctx.Failed instead of taking down the pool goroutine.
func (r *Receiver) runHandler(ctx *invoke.InvocationContext) (val any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &handlerPanic{value: p}
		}
	}()
	return r.handler(ctx)
}

// CancelInvocation always returns false: the in-process pool has no
// interrupt hook once a goroutine has started running the handler, so
// cancellation relies entirely on the handler observing ctx's state (or
// on the invocation not having reached Ready yet, in which case the
// caller's own cancel path already moved it to Cancelled/CancelReq).
func (r *Receiver) CancelInvocation(*invoke.InvocationContext, *invoke.ReceiverInvocationContext) bool {
	return false
}

// Wait blocks until every scheduled invocation has run its handler. Tests
// use this instead of a sleep loop to know the pool has drained.
func (r *Receiver) Wait() {
	r.pool.Wait()
}

type producer struct {
	val any
}

func (p *producer) Produce() (any, error) { return p.val, nil }
func (p *producer) Discard()              {}

type handlerPanic struct{ value any }

func (h *handlerPanic) Error() string {
	return "loopback: handler panicked"
}
