package invoke

import (
	"errors"
	"testing"
	"time"
)

func TestFutureHandle_GetReturnsResult(t *testing.T) {
	recv := &fakeReceiver{}
	ctx := newBoundContext(t, nil, recv, nil)
	ctx.SendRequest()
	ctx.ResultReady(&fakeProducer{val: 42})

	f := NewFutureHandle(ctx)
	defer f.Close()

	val, err := f.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if val != 42 {
		t.Fatalf("expected 42, got %v", val)
	}
	if !f.IsDone() {
		t.Fatal("expected IsDone true after Get")
	}
	if f.IsCancelled() {
		t.Fatal("expected IsCancelled false")
	}
}

func TestFutureHandle_Cancel(t *testing.T) {
	recv := &fakeReceiver{cancelResult: true}
	ctx := newBoundContext(t, nil, recv, nil)
	ctx.SendRequest()

	f := NewFutureHandle(ctx)
	defer f.Close()

	if !f.Cancel(false) {
		t.Fatal("expected Cancel to be accepted")
	}
	ctx.Cancelled()

	if !f.IsCancelled() {
		t.Fatal("expected IsCancelled true")
	}
	_, err := f.Get()
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestFutureHandle_GetTimeout_Expires(t *testing.T) {
	recv := &fakeReceiver{}
	ctx := newBoundContext(t, nil, recv, nil)
	ctx.SendRequest()

	f := NewFutureHandle(ctx)
	defer f.Close()

	_, err := f.GetTimeout(10 * time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}

	// The invocation is still alive; a late result must not panic or hang.
	ctx.ResultReady(&fakeProducer{val: "late"})
}

func TestFutureHandle_GetTimeout_ResolvesBeforeDeadline(t *testing.T) {
	recv := &fakeReceiver{}
	ctx := newBoundContext(t, nil, recv, nil)
	ctx.SendRequest()
	ctx.ResultReady(&fakeProducer{val: "fast"})

	f := NewFutureHandle(ctx)
	defer f.Close()

	val, err := f.GetTimeout(time.Second)
	if err != nil {
		t.Fatalf("GetTimeout: %v", err)
	}
	if val != "fast" {
		t.Fatalf("expected fast, got %v", val)
	}
}

func TestFutureHandle_Close_IsIdempotentAndDiscardsUnread(t *testing.T) {
	recv := &fakeReceiver{}
	ctx := newBoundContext(t, nil, recv, nil)
	ctx.SendRequest()

	p := &fakeProducer{val: "never-read"}
	ctx.ResultReady(p)

	f := NewFutureHandle(ctx)
	f.Close()
	f.Close() // idempotent, must not panic or double-discard

	produced, discarded := p.state()
	if produced || !discarded {
		t.Fatalf("expected the abandoned producer to be discarded, got produced=%v discarded=%v", produced, discarded)
	}
	if ctx.State() != StateDiscarded {
		t.Fatalf("expected DISCARDED, got %v", ctx.State())
	}
}

func TestFutureHandle_Context_ExposesUnderlyingContext(t *testing.T) {
	ctx := New(Options{Locator: Locator{Namespace: "n", Identity: "i"}})
	f := NewFutureHandle(ctx)
	defer f.Close()
	if f.Context() != ctx {
		t.Fatal("expected Context() to return the wrapped InvocationContext")
	}
}
