package cel

import (
	celgo "github.com/google/cel-go/cel"

	"github.com/Sentinel-Gate/invoke-core/internal/domain/invoke"
)

// AffinityStage evaluates a compiled CEL expression against the
// invocation's identity and ContextData during the request pass. A
// matching expression sets the WeakAffinityKey attachment so the core can
// report it to the owning ProxyHandler once the result pass unwinds
// (SPEC_FULL "Affinity"); it never rejects an invocation on its own, and
// its result-pass leg is a plain pass-through — applying WeakAffinityKey
// is the core's job, not this stage's.
type AffinityStage struct {
	evaluator *Evaluator
	program   celgo.Program
	expr      string
}

// NewAffinityStage validates and compiles expr against a fresh affinity
// Evaluator and returns an Interceptor ready to wire into a chain.
func NewAffinityStage(expr string) (*AffinityStage, error) {
	evaluator, err := NewEvaluator()
	if err != nil {
		return nil, err
	}
	if err := evaluator.ValidateExpression(expr); err != nil {
		return nil, err
	}
	prg, err := evaluator.CompileCached(expr)
	if err != nil {
		return nil, err
	}
	return &AffinityStage{evaluator: evaluator, program: prg, expr: expr}, nil
}

// HandleInvocation evaluates the configured expression and, on a match,
// deposits expr under WeakAffinityKey for the core to pick up after a
// successful result pass.
func (a *AffinityStage) HandleInvocation(ctx *invoke.InvocationContext) error {
	matched, err := a.evaluator.Evaluate(a.program, AffinityActivation{
		Locator:     ctx.GetLocator(),
		Method:      ctx.GetInvokedMethod(),
		ContextData: ctx.GetContextData(),
	})
	if err == nil && matched {
		ctx.SetAttachment(invoke.WeakAffinityKey, a.expr)
	}
	return ctx.SendRequest()
}

// HandleInvocationResult just proceeds inward; WeakAffinityKey is applied
// by the core itself, exactly once, after the outermost result-pass call
// returns (§4.1, §6).
func (a *AffinityStage) HandleInvocationResult(ctx *invoke.InvocationContext) (any, error) {
	return ctx.GetResult()
}
