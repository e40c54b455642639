package cel

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/google/cel-go/cel"
)

// programCache memoizes compiled programs by expression text, keyed by an
// xxhash digest rather than the (potentially large) expression string
// itself. Each Evaluator owns its own cache, so programs are shared only
// between calls on the same Evaluator; NewAffinityStage builds a fresh
// Evaluator per stage, so separate stages do not share compiled programs.
type programCache struct {
	mu      sync.RWMutex
	entries map[uint64]cel.Program
}

func newProgramCache() *programCache {
	return &programCache{entries: make(map[uint64]cel.Program)}
}

func (c *programCache) get(expr string) (cel.Program, bool) {
	key := xxhash.Sum64String(expr)
	c.mu.RLock()
	prg, ok := c.entries[key]
	c.mu.RUnlock()
	return prg, ok
}

func (c *programCache) put(expr string, prg cel.Program) {
	key := xxhash.Sum64String(expr)
	c.mu.Lock()
	c.entries[key] = prg
	c.mu.Unlock()
}

// CompileCached behaves like Compile but memoizes the result by expression
// text in e's cache, so repeated calls on the same Evaluator with the same
// expression return one compiled program instead of recompiling it.
func (e *Evaluator) CompileCached(expression string) (cel.Program, error) {
	if prg, ok := e.cache.get(expression); ok {
		return prg, nil
	}
	prg, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	e.cache.put(expression, prg)
	return prg, nil
}
