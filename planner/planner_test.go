package planner_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junkim100/homebrew-trace-sub001/llm"
	"github.com/junkim100/homebrew-trace-sub001/planner"
	"github.com/junkim100/homebrew-trace-sub001/schemas"
)

// scriptedClient returns queued responses in order, one per Complete call,
// so a test can script a failure-then-success (or always-failing) sequence.
type scriptedClient struct {
	responses []llm.Response
	errs      []error
	calls     int
}

func (c *scriptedClient) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	i := c.calls
	c.calls++
	if i < len(c.errs) && c.errs[i] != nil {
		return llm.Response{}, c.errs[i]
	}
	if i < len(c.responses) {
		return c.responses[i], nil
	}
	return llm.Response{Content: `{}`}, nil
}

func TestPlanForTypeRelationshipUsesTemplateWithoutTouchingLLM(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{}
	p := planner.New(client)

	plan, err := p.PlanForType(context.Background(), "what was I doing while listening to music", schemas.QueryTypeRelationship, "")

	require.NoError(t, err)
	assert.Equal(t, 0, client.calls, "a templated query type must never call the LLM")
	assert.Equal(t, schemas.QueryTypeRelationship, plan.QueryType)
	assert.Len(t, plan.Steps, 3)
}

func TestPlanForTypeComparisonTemplateHasFourSteps(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{}
	p := planner.New(client)

	plan, err := p.PlanForType(context.Background(), "compare this month to last month", schemas.QueryTypeComparison, "")

	require.NoError(t, err)
	assert.Len(t, plan.Steps, 4)
	assert.True(t, plan.RequiresWebSearch == false)
}

func TestPlanForTypeWebAugmentedRequiresWebSearch(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{}
	p := planner.New(client)

	plan, err := p.PlanForType(context.Background(), "what's the latest on this topic", schemas.QueryTypeWebAugmented, "")

	require.NoError(t, err)
	assert.True(t, plan.RequiresWebSearch)
}

func TestPlanForTypeMultiEntityFallsThroughToLLM(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{responses: []llm.Response{{Content: `{
		"query_type": "multi_entity",
		"reasoning": "needs both entities",
		"steps": [{"action": "semantic_search", "params": {"query": "a and b"}}],
		"estimated_time_seconds": 8,
		"requires_web_search": false
	}`}}}
	p := planner.New(client)

	plan, err := p.PlanForType(context.Background(), "how are a and b related", schemas.QueryTypeMultiEntity, "")

	require.NoError(t, err)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, schemas.QueryTypeMultiEntity, plan.QueryType)
}

func TestPlanRetriesOnParseFailureThenSucceeds(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{responses: []llm.Response{
		{Content: `not valid json`},
		{Content: `{
			"query_type": "multi_entity",
			"reasoning": "ok",
			"steps": [{"action": "semantic_search", "params": {}}],
			"estimated_time_seconds": 5,
			"requires_web_search": false
		}`},
	}}
	p := planner.New(client)

	plan, err := p.Plan(context.Background(), "some query", "", nil)

	require.NoError(t, err)
	assert.Equal(t, 2, client.calls)
	assert.Len(t, plan.Steps, 1)
}

func TestPlanFallsBackToStaticPlanAfterExhaustingRetries(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{responses: []llm.Response{
		{Content: `garbage`},
		{Content: `still garbage`},
		{Content: `also garbage`},
	}}
	p := planner.New(client)

	plan, err := p.Plan(context.Background(), "some query", "", nil)

	require.NoError(t, err)
	assert.Equal(t, 3, client.calls)
	assert.Equal(t, schemas.QueryTypeSimple, plan.QueryType)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, schemas.ActionHierarchicalSearch, plan.Steps[0].Action)
}

func TestPlanTransportErrorSkipsStraightToFallbackWithoutExhaustingRetries(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{errs: []error{assertionError{}}}
	p := planner.New(client)

	plan, err := p.Plan(context.Background(), "some query", "", nil)

	require.NoError(t, err)
	assert.Equal(t, 1, client.calls, "a transport-level error must not be retried like a parse failure")
	assert.Equal(t, schemas.QueryTypeSimple, plan.QueryType)
}

type assertionError struct{}

func (assertionError) Error() string { return "transport failure" }
