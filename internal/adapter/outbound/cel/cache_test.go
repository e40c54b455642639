package cel

import (
	"testing"

	"github.com/Sentinel-Gate/invoke-core/internal/domain/invoke"
)

func TestEvaluator_CompileCached_ReusesProgram(t *testing.T) {
	e, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	const expr = `identity == "shard-1"`
	first, err := e.CompileCached(expr)
	if err != nil {
		t.Fatalf("CompileCached: %v", err)
	}
	second, err := e.CompileCached(expr)
	if err != nil {
		t.Fatalf("CompileCached (second call): %v", err)
	}
	if first != second {
		t.Fatal("expected the second call to return the cached program instance")
	}

	match, err := e.Evaluate(second, AffinityActivation{
		Locator: invoke.Locator{Namespace: "orders", Identity: "shard-1"},
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !match {
		t.Fatal("expected cached program to still evaluate correctly")
	}
}

func TestEvaluator_CompileCached_DistinctExpressionsDoNotCollide(t *testing.T) {
	e, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	a, err := e.CompileCached(`identity == "shard-1"`)
	if err != nil {
		t.Fatalf("CompileCached a: %v", err)
	}
	b, err := e.CompileCached(`identity == "shard-2"`)
	if err != nil {
		t.Fatalf("CompileCached b: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct expressions to compile to distinct programs")
	}
}
