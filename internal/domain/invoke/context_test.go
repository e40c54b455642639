package invoke

import "testing"

func TestNew_DefaultsAndAccessors(t *testing.T) {
	loc := Locator{Namespace: "orders", Identity: "shard-1"}
	method := MethodDescriptor{Name: "PlaceOrder", ParameterTypes: []string{"string"}}
	ctx := New(Options{
		Locator:    loc,
		Method:     method,
		Parameters: []any{"sku-1"},
		ViewType:   "OrdersView",
	})

	if ctx.ID() == "" {
		t.Fatal("expected a non-empty correlation id")
	}
	if ctx.GetLocator() != loc {
		t.Fatalf("GetLocator: got %v, want %v", ctx.GetLocator(), loc)
	}
	if got := ctx.GetInvokedMethod(); got.Name != method.Name || len(got.ParameterTypes) != len(method.ParameterTypes) {
		t.Fatalf("GetInvokedMethod: got %v, want %v", got, method)
	}
	if len(ctx.GetParameters()) != 1 || ctx.GetParameters()[0] != "sku-1" {
		t.Fatalf("GetParameters: got %v", ctx.GetParameters())
	}
	if ctx.GetViewClass() != "OrdersView" {
		t.Fatalf("GetViewClass: got %q", ctx.GetViewClass())
	}
	if ctx.GetInvokedProxy() != nil {
		t.Fatal("expected nil proxy when none supplied")
	}
	if ctx.State() != StateWaiting {
		t.Fatalf("expected initial state WAITING, got %v", ctx.State())
	}
	if ctx.AsyncState() != AsyncSynchronous {
		t.Fatalf("expected initial async state SYNCHRONOUS, got %v", ctx.AsyncState())
	}
}

func TestAttachments_LocalOverlayFallsBackToProxy(t *testing.T) {
	proxy := newFakeProxy(Locator{Namespace: "n", Identity: "i"})
	proxy.SetAttachment(WeakAffinityKey, "proxy-wide")

	ctx := New(Options{ProxyHandler: proxy})

	v, ok := ctx.GetAttachment(WeakAffinityKey)
	if !ok || v != "proxy-wide" {
		t.Fatalf("expected fallback to proxy value, got %v, %v", v, ok)
	}

	ctx.SetAttachment(WeakAffinityKey, "invocation-local")
	v, ok = ctx.GetAttachment(WeakAffinityKey)
	if !ok || v != "invocation-local" {
		t.Fatalf("expected local overlay to shadow proxy value, got %v, %v", v, ok)
	}

	// The proxy's own value must be untouched by the invocation-local write.
	proxyVal, _ := proxy.GetAttachment(WeakAffinityKey)
	if proxyVal != "proxy-wide" {
		t.Fatalf("expected proxy-wide value unchanged, got %v", proxyVal)
	}
}

func TestAttachments_NoProxyNoFallback(t *testing.T) {
	ctx := New(Options{})
	if _, ok := ctx.GetAttachment(WeakAffinityKey); ok {
		t.Fatal("expected no value without a proxy or local write")
	}
}

func TestContextData_PreservesInsertionOrder(t *testing.T) {
	ctx := New(Options{})
	cd := ctx.GetContextData()
	cd.Set("b", 2)
	cd.Set("a", 1)
	cd.Set("b", 20) // overwritten value, same position

	keys := cd.Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Fatalf("expected insertion order [b a], got %v", keys)
	}
	v, ok := cd.Get("b")
	if !ok || v != 20 {
		t.Fatalf("expected overwritten value 20, got %v, %v", v, ok)
	}
}

func TestBindReceiver_SetsReceiverState(t *testing.T) {
	ctx := New(Options{})
	recv := &fakeReceiver{}
	rcvCtx := &ReceiverInvocationContext{TransportID: "t-1"}
	ctx.BindReceiver(recv, rcvCtx)

	if err := ctx.SendRequest(); err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if recv.processed != 1 {
		t.Fatalf("expected receiver to be invoked once, got %d", recv.processed)
	}
}
