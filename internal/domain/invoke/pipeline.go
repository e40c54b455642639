package invoke

// SendRequest drives the request pass one step forward (§6). The first
// call is made by whatever dispatches the invocation (cursor==0); every
// Interceptor.HandleInvocation implementation calls it again to hand off
// to the next stage. Once the cursor runs off the end of the chain, the
// bound Receiver is asked to schedule the call.
func (c *InvocationContext) SendRequest() error {
	if c.requestDone {
		return ErrWrongPhase
	}
	idx := c.cursor
	if idx < len(c.chain) {
		c.cursor++
		return c.chain[idx].HandleInvocation(c)
	}

	c.requestDone = true
	if !c.receiverBound || c.receiver == nil {
		err := ErrNoReceiverBound
		c.failInternal(err)
		return err
	}
	if err := c.receiver.ProcessInvocation(c, c.receiverCtx); err != nil {
		c.failInternal(err)
		return err
	}
	return nil
}

// RejectRequest fails the invocation locally, without ever reaching a
// Receiver — the path an auth or validation Interceptor takes when it
// decides the call must not proceed. Unlike Failed, the cause is stored
// as-is rather than wrapped in RemoteFailure, since no remote call was
// ever attempted. Returns the same error, for a convenient
// "return ctx.RejectRequest(err)" in HandleInvocation implementations.
func (c *InvocationContext) RejectRequest(err error) error {
	c.requestDone = true
	c.failInternal(err)
	return err
}

// GetResult drives the result pass one step forward (§4.1, §4.5, §6). The
// outermost call is made by the caller-facing routine (AwaitResponse or
// FutureHandle.Get) once the invocation has left WAITING/CANCEL_REQ; every
// Interceptor.HandleInvocationResult implementation that chooses to
// proceed calls it again to reach the next, more-inner stage. The pass
// walks the chain forward from cursor 0 (reset by ResultReady), the same
// direction as the request pass, and the call that finds cursor already
// at the end of the chain consumes the ResultProducer exactly once.
//
// The CONSUMING state exists precisely to serialize contending getters
// (§4.5): a second getter arriving while the first is already consuming
// the producer waits on the same condition variable rather than racing
// it, so only the winner of the READY→CONSUMING transition ever touches
// producer.Produce.
func (c *InvocationContext) GetResult() (any, error) {
	c.mu.Lock()
	for c.state == StateWaiting || c.state == StateCancelReq || c.state == StateConsuming {
		c.cond.Wait()
	}
	state := c.state
	cachedErr := c.cachedErr
	cachedResult := c.cachedResult
	idx := c.cursor
	outermost := idx == 0

	switch state {
	case StateCancelled:
		c.mu.Unlock()
		return nil, ErrCancelled
	case StateFailed:
		c.mu.Unlock()
		return cachedResult, cachedErr
	case StateDiscarded:
		c.mu.Unlock()
		return nil, ErrOneWay
	case StateDone:
		c.mu.Unlock()
		return cachedResult, nil
	}

	// state is Ready: keep driving the result pass forward.
	if idx < len(c.chain) {
		c.cursor++
		c.mu.Unlock()
		val, err := c.chain[idx].HandleInvocationResult(c)
		if outermost && err == nil {
			c.applyWeakAffinity()
		}
		return val, err
	}

	// idx == len(chain): this call claims the producer. The transition to
	// CONSUMING happens in the same critical section that read idx, so a
	// concurrent second getter can never observe READY and also reach
	// here (invariant 4, §3).
	producer := c.resultProducer
	prev := c.state
	c.state = StateConsuming
	c.mu.Unlock()
	c.instrumentation.OnStateChange(c, prev, StateConsuming)

	val, err := c.consumeProducer(producer)
	if outermost && err == nil {
		c.applyWeakAffinity()
	}
	return val, err
}

// applyWeakAffinity reports the WeakAffinityKey attachment, if any
// interceptor set one during the request pass, to the owning ProxyHandler
// (§4.1 special case, §6). Called exactly once per successful invocation,
// by the outermost GetResult call (the one whose cursor was 0 on entry)
// immediately after its inner call returns.
func (c *InvocationContext) applyWeakAffinity() {
	if c.proxyHandler == nil {
		return
	}
	hint, ok := c.GetAttachment(WeakAffinityKey)
	if !ok {
		return
	}
	c.proxyHandler.SetWeakAffinity(hint)
}

// consumeProducer calls producer.Produce exactly once and retires the
// invocation to a terminal state (invariant 4, §3). Only reachable through
// GetResult's claim above, so at most one goroutine ever calls this for a
// given invocation.
func (c *InvocationContext) consumeProducer(producer ResultProducer) (any, error) {
	val, produceErr := producer.Produce()
	c.instrumentation.OnProducerDisposition(c, true)

	c.mu.Lock()
	if c.state != StateConsuming {
		// Something else (a confirmed Cancelled, most plausibly) retired
		// the invocation while Produce was in flight; that transition
		// already won, so this result has nowhere to go. Re-assert the
		// terminal state rather than clobber it (§4.5).
		final := c.state
		cachedErr := c.cachedErr
		cachedResult := c.cachedResult
		c.mu.Unlock()
		switch final {
		case StateCancelled:
			return nil, ErrCancelled
		case StateDiscarded:
			return nil, ErrOneWay
		default:
			return cachedResult, cachedErr
		}
	}
	prev := c.state
	if produceErr != nil {
		c.cachedErr = &RemoteFailure{Cause: produceErr}
		c.state = StateFailed
	} else {
		c.cachedResult = val
		c.state = StateDone
	}
	next := c.state
	cachedErr := c.cachedErr
	c.mu.Unlock()
	c.cond.Broadcast()
	c.instrumentation.OnStateChange(c, prev, next)

	if produceErr != nil {
		return nil, cachedErr
	}
	return val, nil
}

// DiscardResult short-circuits the remainder of the result pass: the
// producer, if one was installed, is discarded unread and the invocation
// retires as Discarded. An Interceptor calls this instead of GetResult
// when it decides the caller must not see the reply. Waits alongside
// GetResult on CONSUMING so a discard can never land between a
// concurrent getter's claim and its producer call.
func (c *InvocationContext) DiscardResult() error {
	c.mu.Lock()
	for c.state == StateWaiting || c.state == StateCancelReq || c.state == StateConsuming {
		c.cond.Wait()
	}
	switch c.state {
	case StateCancelled, StateDiscarded, StateFailed, StateDone:
		c.mu.Unlock()
		return nil
	}
	producer := c.resultProducer
	prev := c.state
	c.state = StateDiscarded
	c.mu.Unlock()
	c.cond.Broadcast()
	c.instrumentation.OnStateChange(c, prev, StateDiscarded)

	if producer != nil {
		producer.Discard()
		c.instrumentation.OnProducerDisposition(c, false)
	}
	return nil
}

// failInternal retires the invocation to Failed for a cause raised by the
// core itself (e.g. no Receiver bound), as opposed to a remote cause
// reported through Failed, which is wrapped in RemoteFailure.
func (c *InvocationContext) failInternal(err error) {
	c.mu.Lock()
	if c.state.IsTerminal() {
		c.mu.Unlock()
		return
	}
	prev := c.state
	c.cachedErr = err
	c.state = StateFailed
	c.mu.Unlock()
	c.cond.Broadcast()
	c.instrumentation.OnStateChange(c, prev, StateFailed)
}

// ResultReady installs p as the winning ResultProducer and moves the
// invocation to Ready (§6). Called by the bound Receiver, on any
// goroutine, at most once. If the invocation was meanwhile cancelled, or
// was marked one-way via SetDiscardResult, p is discarded immediately
// instead so that invariant 4 (exactly-once disposition) still holds.
func (c *InvocationContext) ResultReady(p ResultProducer) {
	c.mu.Lock()
	if c.state.IsTerminal() {
		c.mu.Unlock()
		p.Discard()
		c.instrumentation.OnProducerDisposition(c, false)
		return
	}
	if c.asyncState == AsyncOneWay {
		prev := c.state
		c.state = StateDiscarded
		c.mu.Unlock()
		c.cond.Broadcast()
		c.instrumentation.OnStateChange(c, prev, StateDiscarded)
		p.Discard()
		c.instrumentation.OnProducerDisposition(c, false)
		return
	}
	prev := c.state
	c.resultProducer = p
	c.cursor = 0
	c.state = StateReady
	c.mu.Unlock()
	c.cond.Broadcast()
	c.instrumentation.OnStateChange(c, prev, StateReady)
}

// Failed retires the invocation to Failed with a remote cause, reported
// by the bound Receiver. No-op once the invocation has already reached a
// terminal state.
func (c *InvocationContext) Failed(cause error) {
	c.failInternal(&RemoteFailure{Cause: cause})
}

// Cancelled retires the invocation to Cancelled. Called by the bound
// Receiver once it has confirmed the remote side will never reply; the
// core never calls it itself, not even after RequestCancel. No-op once the
// invocation has already reached a terminal state.
func (c *InvocationContext) Cancelled() {
	c.mu.Lock()
	if c.state.IsTerminal() {
		c.mu.Unlock()
		return
	}
	prev := c.state
	c.state = StateCancelled
	c.mu.Unlock()
	c.cond.Broadcast()
	c.instrumentation.OnStateChange(c, prev, StateCancelled)
}

// RequestCancel moves a still-pending invocation to CancelReq and, if a
// Receiver is already bound, asks it to cancel the in-flight exchange. It
// returns the Receiver's CancelInvocation answer (true when no Receiver is
// bound), mirroring the boolean returned by FutureHandle.Cancel. It returns
// false without contacting the Receiver when the invocation had already
// resolved (or was already being cancelled) by the time this ran.
func (c *InvocationContext) RequestCancel() bool {
	c.mu.Lock()
	if c.state != StateWaiting {
		c.mu.Unlock()
		return false
	}
	prev := c.state
	c.state = StateCancelReq
	c.mu.Unlock()
	c.cond.Broadcast()
	c.instrumentation.OnStateChange(c, prev, StateCancelReq)

	if c.receiverBound && c.receiver != nil {
		return c.receiver.CancelInvocation(c, c.receiverCtx)
	}
	return true
}

// ProceedAsynchronously upgrades the invocation from Synchronous to
// Asynchronous (§9, invariant 6): it never transitions to or from OneWay.
// Any goroutine currently blocked in AwaitResponse wakes and returns
// ProceedAsync instead of waiting further.
func (c *InvocationContext) ProceedAsynchronously() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.asyncState != AsyncSynchronous {
		return ErrWrongPhase
	}
	c.asyncState = AsyncAsynchronous
	c.cond.Broadcast()
	return nil
}

// SetDiscardResult marks the invocation OneWay (§9): the caller has
// declared it will never read the result. If the result already arrived
// (state is Ready), the producer is discarded inline per the redesign
// permitted by §9's open question, rather than left for a result pass
// that will never run. If the result has not arrived yet, ResultReady
// performs the discard itself when it fires.
func (c *InvocationContext) SetDiscardResult() error {
	c.mu.Lock()
	if c.asyncState == AsyncAsynchronous {
		c.mu.Unlock()
		return ErrWrongPhase
	}
	c.asyncState = AsyncOneWay
	if c.state != StateReady {
		c.mu.Unlock()
		return nil
	}
	producer := c.resultProducer
	prev := c.state
	c.state = StateDiscarded
	c.mu.Unlock()
	c.cond.Broadcast()
	c.instrumentation.OnStateChange(c, prev, StateDiscarded)

	if producer != nil {
		producer.Discard()
		c.instrumentation.OnProducerDisposition(c, false)
	}
	return nil
}

// AwaitResponse is the caller-thread routine for the synchronous call
// path (§4.3): it blocks until the invocation leaves WAITING/CANCEL_REQ,
// unless ProceedAsynchronously fires first, in which case it returns the
// PROCEED_ASYNC sentinel so the caller can switch to a FutureHandle
// instead of blocking further. If it finds the invocation marked one-way
// while waiting, it returns ErrOneWay.
func (c *InvocationContext) AwaitResponse() (any, error) {
	c.mu.Lock()
	for c.state == StateWaiting || c.state == StateCancelReq {
		if c.asyncState == AsyncOneWay {
			c.mu.Unlock()
			return nil, ErrOneWay
		}
		if c.asyncState != AsyncSynchronous {
			c.mu.Unlock()
			return ProceedAsync, nil
		}
		c.cond.Wait()
	}
	c.mu.Unlock()
	return c.GetResult()
}

// State returns the current state under the context's lock.
func (c *InvocationContext) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// AsyncState returns the current asynchrony mode under the context's lock.
func (c *InvocationContext) AsyncState() AsyncState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.asyncState
}
