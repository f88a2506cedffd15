// Package executor runs a validated schemas.QueryPlan to completion: it
// computes phases from the plan's dependency graph, dispatches each phase's
// steps (inline when there is exactly one, bounded-parallel otherwise),
// folds results into a shared ExecutionContext between phases, and merges
// everything into one ExecutionResult.
package executor

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/junkim100/homebrew-trace-sub001/actions"
	"github.com/junkim100/homebrew-trace-sub001/runtime/agent/telemetry"
	"github.com/junkim100/homebrew-trace-sub001/schemas"
)

// MaxPlanTimeout bounds the wall-clock budget of a single Execute call. It is
// checked before each phase begins, not mid-phase: no new phase starts after
// the deadline. The context handed to a phase's steps is also cancelled at
// the deadline, so steps still running then are cut short (in a multi-step
// phase they come back as synthetic timeout failures).
const MaxPlanTimeout = 30 * time.Second

// MaxWorkers caps how many steps of a single phase run concurrently.
const MaxWorkers = 4

// Executor runs plans against a fixed action catalog.
type Executor struct {
	registry    *actions.Registry
	logger      telemetry.Logger
	planTimeout time.Duration
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger overrides the default no-op logger.
func WithLogger(logger telemetry.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// WithPlanTimeout overrides MaxPlanTimeout for one Executor instance.
func WithPlanTimeout(d time.Duration) Option {
	return func(e *Executor) { e.planTimeout = d }
}

// New builds an Executor backed by registry.
func New(registry *actions.Registry, opts ...Option) *Executor {
	e := &Executor{registry: registry, logger: telemetry.NewNoopLogger(), planTimeout: MaxPlanTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs plan to completion (or until MaxPlanTimeout elapses) and
// returns the merged result. It never returns an error: a catastrophic
// failure to even compute the plan's phases is reported as a
// fallback_used result rather than propagated.
func (e *Executor) Execute(ctx context.Context, plan *schemas.QueryPlan) schemas.ExecutionResult {
	start := time.Now()

	phases, err := plan.GetExecutionOrder()
	if err != nil {
		e.logger.Error(ctx, "failed to compute execution order", "plan_id", plan.PlanID, "error", err)
		return schemas.ExecutionResult{
			PlanID:         plan.PlanID,
			Query:          plan.Query,
			Success:        false,
			FallbackUsed:   true,
			FallbackReason: err.Error(),
			MergedNotes:    []map[string]any{},
			MergedEntities: []map[string]any{},
			Aggregates:     []map[string]any{},
			WebResults:     []map[string]any{},
			Patterns:       []string{},
			StepResults:    map[string]schemas.StepResult{},
		}
	}

	stepByID := make(map[string]schemas.PlanStep, len(plan.Steps))
	for _, s := range plan.Steps {
		stepByID[s.StepID] = s
	}

	ectx := NewExecutionContext()
	deadline := start.Add(e.planTimeout)
	stepsCompleted, stepsFailed := 0, 0

	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	for _, phase := range phases {
		if time.Now().After(deadline) {
			e.logger.Warn(ctx, "plan timeout exceeded before phase start", "plan_id", plan.PlanID)
			break
		}

		results := e.executePhase(ctx, phase, stepByID, ectx)
		for _, r := range results {
			ectx.AddResult(r.StepID, r)
			if r.Success {
				stepsCompleted++
				continue
			}
			stepsFailed++
			if step, ok := stepByID[r.StepID]; ok && step.Required {
				e.logger.Warn(ctx, "required step failed", "plan_id", plan.PlanID, "step_id", r.StepID, "error", r.Error)
			}
		}
	}

	result := e.buildExecutionResult(plan, ectx, stepsCompleted, stepsFailed, start)
	return result
}

// ExecuteAsync runs Execute on a separate goroutine and delivers the result
// on the returned channel, for callers that want to fire off a plan without
// blocking the caller's own goroutine.
func (e *Executor) ExecuteAsync(ctx context.Context, plan *schemas.QueryPlan) <-chan schemas.ExecutionResult {
	out := make(chan schemas.ExecutionResult, 1)
	go func() {
		defer close(out)
		out <- e.Execute(ctx, plan)
	}()
	return out
}

// executePhase runs one phase's steps. A single step runs directly on the
// caller's goroutine with no extra timeout wrapping. Multiple steps run
// concurrently, capped at MaxWorkers, each wrapped in its own timeout: a
// step that exceeds step.TimeoutSeconds produces a synthetic failed result
// with execution_time_ms set to the timeout duration. A step that returns in
// time contributes its own StepResult unchanged, failed or not.
func (e *Executor) executePhase(ctx context.Context, stepIDs []string, stepByID map[string]schemas.PlanStep, ectx *ExecutionContext) []schemas.StepResult {
	if len(stepIDs) == 1 {
		step := stepByID[stepIDs[0]]
		return []schemas.StepResult{e.executeStep(ctx, step, ectx)}
	}

	results := make([]schemas.StepResult, len(stepIDs))
	workers := MaxWorkers
	if len(stepIDs) < workers {
		workers = len(stepIDs)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, id := range stepIDs {
		i, id := i, id
		step := stepByID[id]
		g.Go(func() error {
			results[i] = e.executeStepWithTimeout(gctx, step, ectx)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// executeStepWithTimeout runs step under a per-step deadline and converts a
// deadline overrun into a synthetic failed StepResult rather than letting it
// propagate, so one slow step never blocks its phase siblings indefinitely.
func (e *Executor) executeStepWithTimeout(ctx context.Context, step schemas.PlanStep, ectx *ExecutionContext) (result schemas.StepResult) {
	timeout := time.Duration(step.TimeoutSeconds * float64(time.Second))
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan schemas.StepResult, 1)
	go func() {
		done <- e.executeStep(stepCtx, step, ectx)
	}()

	select {
	case r := <-done:
		return r
	case <-stepCtx.Done():
		return schemas.StepResult{
			StepID:          step.StepID,
			Action:          step.Action,
			Success:         false,
			Error:           fmt.Sprintf("step timed out after %.1fs", step.TimeoutSeconds),
			ExecutionTimeMs: step.TimeoutSeconds * 1000,
		}
	}
}

// executeStep instantiates step's action and runs it. An unknown action
// name is reported as a failed result rather than a panic.
func (e *Executor) executeStep(ctx context.Context, step schemas.PlanStep, ectx *ExecutionContext) schemas.StepResult {
	start := time.Now()

	action, err := e.registry.Create(step.Action)
	if err != nil {
		return schemas.StepResult{
			StepID:          step.StepID,
			Action:          step.Action,
			Success:         false,
			Error:           fmt.Sprintf("Unknown action: %s", step.Action),
			ExecutionTimeMs: float64(time.Since(start)) / float64(time.Millisecond),
		}
	}

	return action.Execute(ctx, step.StepID, step.Params, ectx)
}

// buildExecutionResult assembles the final merged evidence bundle from
// everything accumulated in ectx. patterns are lifted from every successful
// result that carries a "patterns" key (not just the first or last);
// comparison takes the first successful result that carries a
// "period_a_description" key (see DESIGN.md for why this departs from a
// naive last-write-wins loop over results).
func (e *Executor) buildExecutionResult(plan *schemas.QueryPlan, ectx *ExecutionContext, stepsCompleted, stepsFailed int, start time.Time) schemas.ExecutionResult {
	notes := ectx.AllNotes()
	if notes == nil {
		notes = []map[string]any{}
	}
	// merged_notes are ordered by start_ts descending; ties keep insertion order.
	sort.SliceStable(notes, func(i, j int) bool {
		ti, _ := notes[i]["start_ts"].(string)
		tj, _ := notes[j]["start_ts"].(string)
		return ti > tj
	})
	entities := ectx.AllEntities()
	if entities == nil {
		entities = []map[string]any{}
	}
	aggregates := ectx.AllAggregates()
	if aggregates == nil {
		aggregates = []map[string]any{}
	}
	webResults := ectx.AllWebResults()
	if webResults == nil {
		webResults = []map[string]any{}
	}

	var patterns []string
	var comparison *schemas.ComparisonResult

	stepResults := make(map[string]schemas.StepResult)
	for _, r := range ectx.AllResults() {
		stepResults[r.StepID] = r
		if !r.Success || r.Result == nil {
			continue
		}
		data, ok := r.Result.(map[string]any)
		if !ok {
			continue
		}
		if ps, ok := data["patterns"].([]string); ok {
			patterns = append(patterns, ps...)
		} else if psAny, ok := data["patterns"].([]any); ok {
			for _, p := range psAny {
				if s, ok := p.(string); ok {
					patterns = append(patterns, s)
				}
			}
		}
		if comparison == nil {
			if desc, ok := data["period_a_description"]; ok {
				comparison = comparisonFromMap(desc, data)
			}
		}
	}
	if patterns == nil {
		patterns = []string{}
	}

	success := stepsCompleted > 0 || len(notes) > 0

	return schemas.ExecutionResult{
		PlanID:               plan.PlanID,
		Query:                plan.Query,
		Success:              success,
		StepsCompleted:       stepsCompleted,
		StepsFailed:          stepsFailed,
		TotalExecutionTimeMs: float64(time.Since(start)) / float64(time.Millisecond),
		MergedNotes:          notes,
		MergedEntities:       entities,
		Aggregates:           aggregates,
		WebResults:           webResults,
		Patterns:             patterns,
		Comparison:           comparison,
		StepResults:          stepResults,
	}
}

func comparisonFromMap(_ any, data map[string]any) *schemas.ComparisonResult {
	get := func(key string) string {
		s, _ := data[key].(string)
		return s
	}
	getMap := func(key string) map[string]any {
		m, _ := data[key].(map[string]any)
		return m
	}
	getStrings := func(key string) []string {
		switch v := data[key].(type) {
		case []string:
			return v
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok {
					out = append(out, s)
				}
			}
			return out
		}
		return nil
	}
	return &schemas.ComparisonResult{
		PeriodADescription: get("period_a_description"),
		PeriodBDescription: get("period_b_description"),
		PeriodAData:        getMap("period_a_data"),
		PeriodBData:        getMap("period_b_data"),
		Differences:        getStrings("differences"),
		Commonalities:      getStrings("commonalities"),
	}
}
