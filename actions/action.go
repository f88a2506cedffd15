// Package actions implements the fifteen-entry catalog of atomic operations
// a QueryPlan's steps invoke, plus the process-wide registry the executor
// resolves action names against.
package actions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/junkim100/homebrew-trace-sub001/schemas"
)

// Context is the narrow view of executor-owned shared state an action needs:
// reading a prior step's result by ID, and draining the notes accumulated so
// far (merge_results additionally folds these in). Actions never write to
// the shared context directly; only the executor does, between phases.
type Context interface {
	StepResult(stepID string) (schemas.StepResult, bool)
	AllNotes() []map[string]any
}

// Action is the uniform contract every catalog entry implements. Execute must
// never panic or return a Go error across the boundary: any failure, expected
// or not, is reported as a StepResult with Success=false, so the executor
// never needs a recover() around a step call.
type Action interface {
	Name() schemas.ActionName
	DefaultTimeout() float64
	Execute(ctx context.Context, stepID string, params map[string]any, ec Context) schemas.StepResult
}

// success builds a successful StepResult, recording elapsed wall-clock time.
func success(stepID string, name schemas.ActionName, start time.Time, result any) schemas.StepResult {
	return schemas.StepResult{
		StepID:          stepID,
		Action:          name,
		Success:         true,
		Result:          result,
		ExecutionTimeMs: float64(time.Since(start)) / float64(time.Millisecond),
	}
}

// failure builds a failed StepResult. A failed step, required or not, does
// not stop the plan: the executor logs a failed required step and still runs
// every later phase. That policy lives in the executor, not here.
func failure(stepID string, name schemas.ActionName, start time.Time, err error) schemas.StepResult {
	return schemas.StepResult{
		StepID:          stepID,
		Action:          name,
		Success:         false,
		Error:           err.Error(),
		ExecutionTimeMs: float64(time.Since(start)) / float64(time.Millisecond),
	}
}

// Registry is the process-wide name -> factory map the executor resolves
// plan step actions against. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[schemas.ActionName]func() Action
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[schemas.ActionName]func() Action)}
}

// Register adds a factory under name, overwriting any existing registration.
func (r *Registry) Register(name schemas.ActionName, factory func() Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create instantiates a fresh Action for name, or an error if unregistered.
func (r *Registry) Create(name schemas.ActionName) (Action, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("actions: unknown action %q", name)
	}
	return factory(), nil
}

// ListActions returns every registered action name. Order is unspecified.
func (r *Registry) ListActions() []schemas.ActionName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]schemas.ActionName, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}
