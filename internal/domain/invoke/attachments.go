package invoke

import "sync"

// AttachmentKey is the typed key used to address an attachment. Callers
// typically declare a distinct zero-size struct type per key, the same
// idiom stdlib context.Context uses, so keys from different packages can
// never collide.
type AttachmentKey any

// weakAffinityKey is the well-known attachment key interceptors use to
// deposit a routing hint that ProxyHandler.SetWeakAffinity picks up after a
// successful result pass (§4.1, §6).
type weakAffinityKey struct{}

// WeakAffinityKey is the attachment key for the routing hint applied once
// per successful invocation.
var WeakAffinityKey AttachmentKey = weakAffinityKey{}

// attachmentBase is the subset of ProxyHandler the attachment store falls
// back to when a key isn't set locally on this invocation.
type attachmentBase interface {
	GetAttachment(key AttachmentKey) (any, bool)
}

// attachments layers a per-invocation overlay over a shared base (normally
// the owning ProxyHandler), so any party can deposit a value on this call
// without mutating state shared across the proxy's other invocations.
type attachments struct {
	mu    sync.Mutex
	local map[AttachmentKey]any
	base  attachmentBase
}

func newAttachments(base attachmentBase) *attachments {
	return &attachments{base: base}
}

// Get returns the value for key, checking the local overlay before falling
// back to the shared base.
func (a *attachments) Get(key AttachmentKey) (any, bool) {
	a.mu.Lock()
	v, ok := a.local[key]
	a.mu.Unlock()
	if ok {
		return v, true
	}
	if a.base != nil {
		return a.base.GetAttachment(key)
	}
	return nil, false
}

// Set stores value under key in this invocation's local overlay. It never
// mutates the shared base.
func (a *attachments) Set(key AttachmentKey, value any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.local == nil {
		a.local = make(map[AttachmentKey]any)
	}
	a.local[key] = value
}
