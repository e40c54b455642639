package invoke

// ReceiverInvocationContext carries whatever per-attempt transport state a
// Receiver needs alongside the InvocationContext — connection handle,
// deadline, wire-level correlation id. The core treats it as opaque and
// only threads it between ProcessInvocation and CancelInvocation.
type ReceiverInvocationContext struct {
	// TransportID names the concrete transport/connection this attempt
	// was scheduled on, for logs and traces.
	TransportID string
	// Attempt is the 1-based retry count, for transports that retry
	// below the core (the core itself has no retry policy — §1 non-goal).
	Attempt int
}

// Receiver is the transport adapter chosen for a given invocation (§6).
// It schedules the wire exchange and, at some later point on any
// goroutine, must call exactly one of ctx.ResultReady, ctx.Failed, or
// ctx.Cancelled.
type Receiver interface {
	// ProcessInvocation schedules the exchange for ctx. A non-nil error
	// return is a scheduling failure (e.g. no connection available) and
	// is treated as the request pass throwing — it does not itself
	// satisfy the "call exactly one of ResultReady/Failed/Cancelled"
	// obligation, since the invocation never left this goroutine.
	ProcessInvocation(ctx *InvocationContext, rcvCtx *ReceiverInvocationContext) error

	// CancelInvocation attempts to cancel a previously scheduled
	// invocation. Returns whether cancellation was effected; a false
	// return means the invocation is still in flight (or already
	// resolved) and the caller should rely on the normal completion
	// path instead.
	CancelInvocation(ctx *InvocationContext, rcvCtx *ReceiverInvocationContext) bool
}

// ResultProducer is a single-use handle owning transport-side resources
// for one pending reply (§6). The core calls exactly one of Produce or
// Discard on a given instance, never both, never neither (invariant 4,
// §3).
type ResultProducer interface {
	// Produce delivers the result, or returns the remote failure cause.
	Produce() (any, error)

	// Discard releases transport resources without reading the reply.
	// Idempotency is the Receiver's concern; the core never calls it more
	// than once per instance.
	Discard()
}

// ProxyHandler is the stand-in object the core reports back to (§6): it
// owns the per-proxy attachment base and the weak-affinity routing hint
// applied after a successful call.
type ProxyHandler interface {
	// GetLocator returns the target this proxy addresses.
	GetLocator() Locator

	// GetAttachment returns the proxy-wide (not per-invocation) value for
	// key, and whether it was set.
	GetAttachment(key AttachmentKey) (any, bool)

	// SetAttachment stores a proxy-wide value under key.
	SetAttachment(key AttachmentKey, value any)

	// SetWeakAffinity records a routing hint to steer future invocations
	// of this proxy. Called at most once per successful invocation,
	// immediately after the outermost result-pass call returns.
	SetWeakAffinity(hint any)
}
