package invoke

import "sync"

// fakeProducer is a ResultProducer test double that records whether it was
// produced or discarded, so tests can assert invariant 4 (exactly-once
// disposition) directly.
type fakeProducer struct {
	mu        sync.Mutex
	val       any
	err       error
	produced  bool
	discarded bool
}

func (p *fakeProducer) Produce() (any, error) {
	p.mu.Lock()
	p.produced = true
	p.mu.Unlock()
	return p.val, p.err
}

func (p *fakeProducer) Discard() {
	p.mu.Lock()
	p.discarded = true
	p.mu.Unlock()
}

func (p *fakeProducer) state() (produced, discarded bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.produced, p.discarded
}

// fakeReceiver is a Receiver test double. ProcessInvocation counts the
// call and, unless scheduleErr is set, returns nil
// immediately without resolving the invocation — tests drive resolution
// explicitly via ctx.ResultReady/Failed/Cancelled to control timing.
type fakeReceiver struct {
	mu             sync.Mutex
	scheduleErr    error
	processed      int
	cancelRequests int
	cancelResult   bool
}

func (r *fakeReceiver) ProcessInvocation(ctx *InvocationContext, rcvCtx *ReceiverInvocationContext) error {
	r.mu.Lock()
	r.processed++
	err := r.scheduleErr
	r.mu.Unlock()
	return err
}

func (r *fakeReceiver) CancelInvocation(ctx *InvocationContext, rcvCtx *ReceiverInvocationContext) bool {
	r.mu.Lock()
	r.cancelRequests++
	result := r.cancelResult
	r.mu.Unlock()
	return result
}

// passThrough is a trivial Interceptor used to pad out a chain without
// altering behavior, so tests can exercise multi-stage cursor movement.
type passThrough struct{}

func (passThrough) HandleInvocation(ctx *InvocationContext) error {
	return ctx.SendRequest()
}

func (passThrough) HandleInvocationResult(ctx *InvocationContext) (any, error) {
	return ctx.GetResult()
}

// recordingInstrumentation captures every OnStateChange/OnProducerDisposition
// call for assertions on the transition sequence.
type recordingInstrumentation struct {
	mu           sync.Mutex
	transitions  []stateTransition
	dispositions []bool
}

type stateTransition struct {
	prev, next State
}

func (r *recordingInstrumentation) OnStateChange(ctx *InvocationContext, prev, next State) {
	r.mu.Lock()
	r.transitions = append(r.transitions, stateTransition{prev, next})
	r.mu.Unlock()
}

func (r *recordingInstrumentation) OnProducerDisposition(ctx *InvocationContext, produced bool) {
	r.mu.Lock()
	r.dispositions = append(r.dispositions, produced)
	r.mu.Unlock()
}

func (r *recordingInstrumentation) snapshot() ([]stateTransition, []bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := make([]stateTransition, len(r.transitions))
	copy(t, r.transitions)
	d := make([]bool, len(r.dispositions))
	copy(d, r.dispositions)
	return t, d
}

// fakeProxy is a ProxyHandler test double.
type fakeProxy struct {
	locator Locator
	mu      sync.Mutex
	attach  map[AttachmentKey]any
	hint    any

	// hintCalls counts SetWeakAffinity calls.
	hintCalls int
}

func newFakeProxy(locator Locator) *fakeProxy {
	return &fakeProxy{locator: locator, attach: make(map[AttachmentKey]any)}
}

func (p *fakeProxy) GetLocator() Locator { return p.locator }

func (p *fakeProxy) GetAttachment(key AttachmentKey) (any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.attach[key]
	return v, ok
}

func (p *fakeProxy) SetAttachment(key AttachmentKey, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attach[key] = value
}

func (p *fakeProxy) SetWeakAffinity(hint any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hint = hint
	p.hintCalls++
}
