package schemas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junkim100/homebrew-trace-sub001/schemas"
)

func TestGetExecutionOrderPreservesDeclarationOrderWithinAPhase(t *testing.T) {
	t.Parallel()

	plan, err := schemas.NewQueryPlan("p1", "q", schemas.QueryTypeSimple, "", []schemas.PlanStep{
		schemas.NewPlanStep("c", schemas.ActionSemanticSearch, nil, nil, true, 5.0, ""),
		schemas.NewPlanStep("a", schemas.ActionSemanticSearch, nil, nil, true, 5.0, ""),
		schemas.NewPlanStep("b", schemas.ActionSemanticSearch, nil, []string{"a", "c"}, true, 5.0, ""),
	}, 5.0, false)
	require.NoError(t, err)

	phases, err := plan.GetExecutionOrder()
	require.NoError(t, err)

	require.Len(t, phases, 2)
	assert.Equal(t, []string{"c", "a"}, phases[0], "phase membership must follow declaration order, not lexical/map order")
	assert.Equal(t, []string{"b"}, phases[1])
}

func TestNewQueryPlanRejectsCycles(t *testing.T) {
	t.Parallel()

	_, err := schemas.NewQueryPlan("p1", "q", schemas.QueryTypeSimple, "", []schemas.PlanStep{
		schemas.NewPlanStep("a", schemas.ActionSemanticSearch, nil, []string{"b"}, true, 5.0, ""),
		schemas.NewPlanStep("b", schemas.ActionSemanticSearch, nil, []string{"a"}, true, 5.0, ""),
	}, 5.0, false)

	assert.Error(t, err)
}

func TestNewQueryPlanRejectsUnknownDependency(t *testing.T) {
	t.Parallel()

	_, err := schemas.NewQueryPlan("p1", "q", schemas.QueryTypeSimple, "", []schemas.PlanStep{
		schemas.NewPlanStep("a", schemas.ActionSemanticSearch, nil, []string{"nonexistent"}, true, 5.0, ""),
	}, 5.0, false)

	assert.Error(t, err)
}

func TestNewQueryPlanEnforcesStepCountBounds(t *testing.T) {
	t.Parallel()

	_, err := schemas.NewQueryPlan("p1", "q", schemas.QueryTypeSimple, "", nil, 5.0, false)
	assert.Error(t, err)
}

func TestNewPlanStepClampsTimeoutToBounds(t *testing.T) {
	t.Parallel()

	tooLong := schemas.NewPlanStep("s1", schemas.ActionSemanticSearch, nil, nil, true, 999.0, "")
	assert.Equal(t, schemas.MaxStepTimeoutSeconds, tooLong.TimeoutSeconds)

	tooShort := schemas.NewPlanStep("s2", schemas.ActionSemanticSearch, nil, nil, true, 0.1, "")
	assert.Equal(t, schemas.MinStepTimeoutSeconds, tooShort.TimeoutSeconds)
}

func TestNewPlanStepGeneratesStepIDWhenAbsent(t *testing.T) {
	t.Parallel()

	step := schemas.NewPlanStep("", schemas.ActionSemanticSearch, nil, nil, true, 5.0, "")
	assert.NotEmpty(t, step.StepID)
}
