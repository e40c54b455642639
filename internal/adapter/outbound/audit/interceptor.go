package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/Sentinel-Gate/invoke-core/internal/domain/invoke"
)

const startedAtKey = "audit.started_at"

// Interceptor journals one Record per invocation whose result pass reaches
// it, i.e. once a ResultProducer has been installed and the outermost
// getter drives the chain. Invocations that end Failed through ctx.Failed,
// Cancelled, or Discarded before a result pass runs are not journaled.
// Writes are logged-and-swallowed on failure: a broken audit disk must
// never turn into a failed invocation.
type Interceptor struct {
	store *Store
	log   *slog.Logger
}

// NewInterceptor builds an Interceptor that appends to store, logging
// write failures through log (or slog.Default() if nil).
func NewInterceptor(store *Store, log *slog.Logger) *Interceptor {
	if log == nil {
		log = slog.Default()
	}
	return &Interceptor{store: store, log: log}
}

// HandleInvocation stamps the invocation's start time and proceeds.
func (i *Interceptor) HandleInvocation(ctx *invoke.InvocationContext) error {
	ctx.GetContextData().Set(startedAtKey, time.Now())
	return ctx.SendRequest()
}

// HandleInvocationResult proceeds to the next (more inner) stage, then
// journals the outcome on the way back out, whatever the inner stages
// returned.
func (i *Interceptor) HandleInvocationResult(ctx *invoke.InvocationContext) (any, error) {
	val, err := ctx.GetResult()
	i.record(ctx, err)
	return val, err
}

func (i *Interceptor) record(ctx *invoke.InvocationContext, resultErr error) {
	started := time.Now()
	if v, ok := ctx.GetContextData().Get(startedAtKey); ok {
		if t, ok := v.(time.Time); ok {
			started = t
		}
	}

	rec := Record{
		InvocationID: ctx.ID(),
		Namespace:    ctx.GetLocator().Namespace,
		Identity:     ctx.GetLocator().Identity,
		Method:       ctx.GetInvokedMethod().Name,
		Outcome:      outcomeFor(ctx, resultErr),
		StartedAt:    started,
		FinishedAt:   time.Now(),
	}
	if resultErr != nil {
		rec.ErrMessage = resultErr.Error()
	}

	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := i.store.Append(writeCtx, rec); err != nil {
		i.log.Error("audit: failed to append record", "invocation_id", rec.InvocationID, "error", err)
	}
}

func outcomeFor(ctx *invoke.InvocationContext, resultErr error) string {
	switch ctx.State() {
	case invoke.StateCancelled:
		return "cancelled"
	case invoke.StateDiscarded:
		return "discarded"
	case invoke.StateFailed:
		return "failed"
	default:
		if resultErr != nil {
			return "failed"
		}
		return "done"
	}
}
