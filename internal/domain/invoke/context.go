package invoke

import (
	"sync"

	"github.com/google/uuid"
)

// Options configures a new InvocationContext. Locator, Method, Parameters,
// and Chain become immutable for the lifetime of the call (§3); everything
// else may be supplied as nil/zero and filled in later by the surrounding
// dispatcher (receiver selection is explicitly out of scope, §1).
type Options struct {
	Locator      Locator
	Method       MethodDescriptor
	Parameters   []any
	Chain        []Interceptor
	ViewType     string
	ProxyHandler ProxyHandler

	// Instrumentation receives lifecycle callbacks. Nil is fine; the core
	// falls back to a no-op.
	Instrumentation Instrumentation
}

// InvocationContext is the central object of a single invocation: its
// identity, its interceptor chain and cursor, its state machine, and the
// ResultProducer slot. See spec §3 for the full field/invariant table.
type InvocationContext struct {
	// id correlates logs/traces/audit rows for this one invocation.
	id string

	// Immutable call identity (invariant: constructor-only writes).
	locator    Locator
	method     MethodDescriptor
	parameters []any
	viewType   string
	chain      []Interceptor

	// Pipeline cursor: shared by both passes, each walking it forward
	// from 0. During the request pass it is touched only by the single
	// goroutine driving SendRequest (invariant 1, §3), same as before;
	// ResultReady resets it to 0 under mu before the result pass begins,
	// and GetResult reads/advances it under mu too, in the same critical
	// section as its READY→CONSUMING claim (§4.5), so a contending getter
	// can never observe a torn cursor.
	cursor      int
	requestDone bool

	receiver      Receiver
	receiverCtx   *ReceiverInvocationContext
	receiverBound bool

	contextData *ContextData
	attachments *attachments

	proxyHandler    ProxyHandler
	instrumentation Instrumentation

	// mu + cond serialize every mutation of state, asyncState,
	// resultProducer, and cachedResult/cachedErr (invariant 7, §3). No
	// Receiver, ResultProducer, or Interceptor call is ever made while mu
	// is held (§5).
	mu             sync.Mutex
	cond           *sync.Cond
	state          State
	asyncState     AsyncState
	resultProducer ResultProducer
	cachedResult   any
	cachedErr      error
}

// New constructs an InvocationContext ready to enter the request pass.
func New(opts Options) *InvocationContext {
	ins := opts.Instrumentation
	if ins == nil {
		ins = noopInstrumentation{}
	}
	c := &InvocationContext{
		id:              uuid.NewString(),
		locator:         opts.Locator,
		method:          opts.Method,
		parameters:      opts.Parameters,
		viewType:        opts.ViewType,
		chain:           opts.Chain,
		contextData:     &ContextData{},
		proxyHandler:    opts.ProxyHandler,
		instrumentation: ins,
		state:           StateWaiting,
		asyncState:      AsyncSynchronous,
	}
	c.cond = sync.NewCond(&c.mu)
	if opts.ProxyHandler != nil {
		c.attachments = newAttachments(opts.ProxyHandler)
	} else {
		c.attachments = newAttachments(nil)
	}
	return c
}

// ID returns the invocation's correlation id.
func (c *InvocationContext) ID() string { return c.id }

// GetLocator returns the immutable target descriptor.
func (c *InvocationContext) GetLocator() Locator { return c.locator }

// GetInvokedMethod returns the immutable method descriptor.
func (c *InvocationContext) GetInvokedMethod() MethodDescriptor { return c.method }

// GetParameters returns the immutable argument tuple.
func (c *InvocationContext) GetParameters() []any { return c.parameters }

// GetViewClass returns the business-interface label the proxy was created
// against.
func (c *InvocationContext) GetViewClass() string { return c.viewType }

// GetInvokedProxy returns the owning ProxyHandler, or nil if none was
// supplied.
func (c *InvocationContext) GetInvokedProxy() ProxyHandler { return c.proxyHandler }

// GetContextData returns the ordered, lazily-created key/value map
// interceptors use to pass routing/auth hints forward within a pass.
func (c *InvocationContext) GetContextData() *ContextData { return c.contextData }

// GetAttachment reads an attachment, falling back to the owning
// ProxyHandler's proxy-wide value when not set on this invocation.
func (c *InvocationContext) GetAttachment(key AttachmentKey) (any, bool) {
	return c.attachments.Get(key)
}

// SetAttachment stores a value local to this invocation.
func (c *InvocationContext) SetAttachment(key AttachmentKey, value any) {
	c.attachments.Set(key, value)
}

// BindReceiver sets the Receiver (and its per-attempt context) the request
// pass will dispatch to once the cursor reaches the end of the chain.
// Receiver selection itself is the surrounding dispatcher's concern (§1);
// the core only records the choice. Safe to call at most once; later calls
// overwrite the binding, which is only meaningful before the request pass
// reaches the chain end.
func (c *InvocationContext) BindReceiver(r Receiver, rcvCtx *ReceiverInvocationContext) {
	c.receiver = r
	c.receiverCtx = rcvCtx
	c.receiverBound = true
}
