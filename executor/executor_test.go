package executor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junkim100/homebrew-trace-sub001/actions"
	"github.com/junkim100/homebrew-trace-sub001/executor"
	"github.com/junkim100/homebrew-trace-sub001/schemas"
)

// fakeAction lets each test script a fixed outcome without touching real
// collaborators.
type fakeAction struct {
	name    schemas.ActionName
	delay   time.Duration
	succeed bool
	result  map[string]any
}

func (f *fakeAction) Name() schemas.ActionName { return f.name }
func (f *fakeAction) DefaultTimeout() float64 { return schemas.DefaultStepTimeout }

func (f *fakeAction) Execute(ctx context.Context, stepID string, params map[string]any, ec actions.Context) schemas.StepResult {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return schemas.StepResult{StepID: stepID, Action: f.name, Success: false, Error: "context canceled"}
		}
	}
	if !f.succeed {
		return schemas.StepResult{StepID: stepID, Action: f.name, Success: false, Error: "boom"}
	}
	return schemas.StepResult{StepID: stepID, Action: f.name, Success: true, Result: f.result}
}

func registryWith(t *testing.T, actionsByName map[schemas.ActionName]*fakeAction) *actions.Registry {
	t.Helper()
	r := actions.NewRegistry()
	for name, a := range actionsByName {
		a := a
		r.Register(name, func() actions.Action { return a })
	}
	return r
}

func TestExecuteSingleStepPlanSucceeds(t *testing.T) {
	t.Parallel()

	const action schemas.ActionName = "semantic_search"
	registry := registryWith(t, map[schemas.ActionName]*fakeAction{
		action: {name: action, succeed: true, result: map[string]any{
			"notes": []map[string]any{{"note_id": "n1", "start_ts": "2026-01-01T00:00:00Z"}},
		}},
	})
	plan, err := schemas.NewQueryPlan("", "q", schemas.QueryTypeSimple, "", []schemas.PlanStep{
		schemas.NewPlanStep("s1", action, nil, nil, true, 5.0, ""),
	}, 5.0, false)
	require.NoError(t, err)

	exec := executor.New(registry)
	result := exec.Execute(context.Background(), plan)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.StepsCompleted)
	assert.Equal(t, 0, result.StepsFailed)
	require.Len(t, result.MergedNotes, 1)
	assert.Equal(t, "n1", result.MergedNotes[0]["note_id"])
}

func TestExecuteOptionalStepFailureDoesNotAbortPlan(t *testing.T) {
	t.Parallel()

	const required schemas.ActionName = "required_action"
	const optional schemas.ActionName = "optional_action"
	registry := registryWith(t, map[schemas.ActionName]*fakeAction{
		required: {name: required, succeed: true, result: map[string]any{"notes": []map[string]any{}}},
		optional: {name: optional, succeed: false},
	})
	plan, err := schemas.NewQueryPlan("", "q", schemas.QueryTypeSimple, "", []schemas.PlanStep{
		schemas.NewPlanStep("s1", required, nil, nil, true, 5.0, ""),
		schemas.NewPlanStep("s2", optional, nil, nil, false, 5.0, ""),
	}, 5.0, false)
	require.NoError(t, err)

	exec := executor.New(registry)
	result := exec.Execute(context.Background(), plan)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.StepsCompleted)
	assert.Equal(t, 1, result.StepsFailed)
}

func TestExecuteUnknownActionProducesFailedStepNotPanic(t *testing.T) {
	t.Parallel()

	registry := actions.NewRegistry()
	plan, err := schemas.NewQueryPlan("", "q", schemas.QueryTypeSimple, "", []schemas.PlanStep{
		schemas.NewPlanStep("s1", "nonexistent_action", nil, nil, true, 5.0, ""),
	}, 5.0, false)
	require.NoError(t, err)

	exec := executor.New(registry)

	var result schemas.ExecutionResult
	assert.NotPanics(t, func() {
		result = exec.Execute(context.Background(), plan)
	})
	assert.Equal(t, 1, result.StepsFailed)
	assert.Contains(t, result.StepResults["s1"].Error, "Unknown action")
}

func TestExecuteMultiStepPhaseRunsConcurrentlyAndBothSucceed(t *testing.T) {
	t.Parallel()

	const a1 schemas.ActionName = "a1"
	const a2 schemas.ActionName = "a2"
	registry := registryWith(t, map[schemas.ActionName]*fakeAction{
		a1: {name: a1, delay: 20 * time.Millisecond, succeed: true, result: map[string]any{}},
		a2: {name: a2, delay: 20 * time.Millisecond, succeed: true, result: map[string]any{}},
	})
	plan, err := schemas.NewQueryPlan("", "q", schemas.QueryTypeSimple, "", []schemas.PlanStep{
		schemas.NewPlanStep("s1", a1, nil, nil, true, 5.0, ""),
		schemas.NewPlanStep("s2", a2, nil, nil, true, 5.0, ""),
	}, 5.0, false)
	require.NoError(t, err)

	exec := executor.New(registry)
	start := time.Now()
	result := exec.Execute(context.Background(), plan)
	elapsed := time.Since(start)

	assert.Equal(t, 2, result.StepsCompleted)
	assert.Less(t, elapsed, 35*time.Millisecond, "two 20ms steps in the same phase should overlap, not serialize")
}

func TestExecuteStepTimeoutProducesSyntheticFailure(t *testing.T) {
	t.Parallel()

	const slow schemas.ActionName = "slow"
	const fast schemas.ActionName = "fast"
	registry := registryWith(t, map[schemas.ActionName]*fakeAction{
		// MinStepTimeoutSeconds clamps timeout_seconds to 1.0, so the delay
		// must exceed that floor for the timeout path to trigger.
		slow: {name: slow, delay: 1200 * time.Millisecond, succeed: true, result: map[string]any{}},
		fast: {name: fast, succeed: true, result: map[string]any{}},
	})
	plan, err := schemas.NewQueryPlan("", "q", schemas.QueryTypeSimple, "", []schemas.PlanStep{
		schemas.NewPlanStep("s1", slow, nil, nil, false, 1.0, ""),
		schemas.NewPlanStep("s2", fast, nil, nil, true, 5.0, ""),
	}, 5.0, false)
	require.NoError(t, err)

	exec := executor.New(registry)
	result := exec.Execute(context.Background(), plan)

	slowResult := result.StepResults["s1"]
	assert.False(t, slowResult.Success)
	assert.InDelta(t, 1000.0, slowResult.ExecutionTimeMs, 100.0)
	assert.True(t, result.StepResults["s2"].Success)
}

func TestExecuteComparisonLiftTakesFirstEncountered(t *testing.T) {
	t.Parallel()

	const c1 schemas.ActionName = "compare1"
	const c2 schemas.ActionName = "compare2"
	registry := registryWith(t, map[schemas.ActionName]*fakeAction{
		c1: {name: c1, succeed: true, result: map[string]any{"period_a_description": "first"}},
		c2: {name: c2, succeed: true, result: map[string]any{"period_a_description": "second"}},
	})
	plan, err := schemas.NewQueryPlan("", "q", schemas.QueryTypeComparison, "", []schemas.PlanStep{
		schemas.NewPlanStep("s1", c1, nil, nil, true, 5.0, ""),
		schemas.NewPlanStep("s2", c2, nil, nil, true, 5.0, ""),
	}, 5.0, false)
	require.NoError(t, err)

	exec := executor.New(registry)
	result := exec.Execute(context.Background(), plan)

	require.NotNil(t, result.Comparison)
	assert.Equal(t, "first", result.Comparison.PeriodADescription)
}
