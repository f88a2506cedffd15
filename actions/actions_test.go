package actions_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junkim100/homebrew-trace-sub001/actions"
	"github.com/junkim100/homebrew-trace-sub001/llm"
	"github.com/junkim100/homebrew-trace-sub001/schemas"
	"github.com/junkim100/homebrew-trace-sub001/store"
)

// fakeContext is a minimal actions.Context for tests that don't need real
// executor state.
type fakeContext struct {
	results map[string]schemas.StepResult
	notes   []map[string]any
}

func (f *fakeContext) StepResult(stepID string) (schemas.StepResult, bool) {
	r, ok := f.results[stepID]
	return r, ok
}

func (f *fakeContext) AllNotes() []map[string]any { return f.notes }

func TestSemanticSearchReturnsNotesFromStore(t *testing.T) {
	t.Parallel()

	notes := &store.InMemoryNoteStore{Notes: []store.Note{
		{NoteID: "n1", StartTS: "2026-01-01T00:00:00Z", Summary: "read a book about music theory"},
	}}
	a := &actions.SemanticSearch{Notes: notes}

	result := a.Execute(context.Background(), "s1", map[string]any{"query": "music"}, &fakeContext{})

	require.True(t, result.Success)
	assert.Equal(t, schemas.ActionSemanticSearch, result.Action)
	data, ok := result.Result.(map[string]any)
	require.True(t, ok)
	found, ok := data["notes"].([]map[string]any)
	require.True(t, ok)
	assert.Len(t, found, 1)
}

func TestAggregatesQueryMissingKeyTypeStillSucceedsWithEmptyResult(t *testing.T) {
	t.Parallel()

	aggregates := &store.InMemoryAggregateStore{Tables: map[string][]store.AggregateItem{}}
	a := &actions.AggregatesQuery{Aggregates: aggregates}

	result := a.Execute(context.Background(), "s1", map[string]any{}, &fakeContext{})

	require.True(t, result.Success)
	data := result.Result.(map[string]any)
	assert.Empty(t, data["aggregates"])
}

type stubLLMClient struct{ content string }

func (c stubLLMClient) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	return llm.Response{Content: c.content}, nil
}

func TestComparePeriodsAcceptsRawStringPeriods(t *testing.T) {
	t.Parallel()

	aggregates := &store.InMemoryAggregateStore{Tables: map[string][]store.AggregateItem{
		"app": {{Key: "editor", Value: 30}},
	}}
	a := &actions.ComparePeriods{
		Aggregates: aggregates,
		Client:     stubLLMClient{content: `{"differences": ["less editor time"], "commonalities": []}`},
	}

	result := a.Execute(context.Background(), "s1", map[string]any{
		"period_a": "January",
		"period_b": "December",
	}, &fakeContext{})

	require.True(t, result.Success)
	data := result.Result.(map[string]any)
	assert.Equal(t, "January", data["period_a_description"])
	assert.Equal(t, "December", data["period_b_description"])
}

type failingGraphStore struct{}

func (failingGraphStore) GetEntityContext(ctx context.Context, entityName, entityType string, filter schemas.TimeFilter) (map[string]any, bool, error) {
	return nil, false, errors.New("graph store unavailable")
}

func (failingGraphStore) ExpandFromEntities(ctx context.Context, entityIDs []string, hops int, filter schemas.TimeFilter, edgeTypes []schemas.EdgeType, minWeight float64, maxRelated int) (store.ExpansionResult, error) {
	return store.ExpansionResult{}, errors.New("graph store unavailable")
}

func (failingGraphStore) FindConnections(ctx context.Context, entityAName, entityBName string, maxHops int) ([][]store.Entity, error) {
	return nil, errors.New("graph store unavailable")
}

func TestGraphExpandNeverPanicsOnStoreError(t *testing.T) {
	t.Parallel()

	a := &actions.GraphExpand{Graph: failingGraphStore{}}

	var result schemas.StepResult
	assert.NotPanics(t, func() {
		result = a.Execute(context.Background(), "s1", map[string]any{"entity_name": "music"}, &fakeContext{})
	})
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestGraphExpandMissingEntityNameFails(t *testing.T) {
	t.Parallel()

	a := &actions.GraphExpand{Graph: failingGraphStore{}}
	result := a.Execute(context.Background(), "s1", map[string]any{}, &fakeContext{})

	assert.False(t, result.Success)
}

func TestFindConnectionsRequiresBothEntities(t *testing.T) {
	t.Parallel()

	a := &actions.FindConnections{Graph: failingGraphStore{}}
	result := a.Execute(context.Background(), "s1", map[string]any{"entity_a": "music"}, &fakeContext{})

	assert.False(t, result.Success)
}

func TestWebSearchWithoutProviderReportsUnavailableAsSuccess(t *testing.T) {
	t.Parallel()

	a := &actions.WebSearch{Provider: unavailableProvider{}}
	result := a.Execute(context.Background(), "s1", map[string]any{"query": "go concurrency"}, &fakeContext{})

	require.True(t, result.Success)
	data := result.Result.(map[string]any)
	assert.Contains(t, data["message"], "TAVILY_API_KEY")
}

type unavailableProvider struct{}

func (unavailableProvider) Available() bool { return false }
func (unavailableProvider) Search(ctx context.Context, query string, maxResults int) ([]schemas.WebResult, []schemas.WebCitation, error) {
	return nil, nil, nil
}

func TestMergeResultsDrainsContextNotesWhenNoRefsMatch(t *testing.T) {
	t.Parallel()

	a := &actions.MergeResults{}
	ec := &fakeContext{notes: []map[string]any{
		{"note_id": "n1", "start_ts": "2026-01-02T00:00:00Z", "summary": "a"},
		{"note_id": "n2", "start_ts": "2026-01-01T00:00:00Z", "summary": "b"},
	}}

	result := a.Execute(context.Background(), "s1", map[string]any{}, ec)

	require.True(t, result.Success)
	data := result.Result.(map[string]any)
	notes := data["notes"].([]map[string]any)
	require.Len(t, notes, 2)
	// Sorted descending by start_ts.
	assert.Equal(t, "n1", notes[0]["note_id"])
}

func TestMergeResultsPreservesInsertionOrderForTiedTimestamps(t *testing.T) {
	t.Parallel()

	a := &actions.MergeResults{}
	ec := &fakeContext{notes: []map[string]any{
		{"note_id": "n1", "start_ts": "2026-01-01T00:00:00Z", "summary": "first"},
		{"note_id": "n2", "start_ts": "2026-01-01T00:00:00Z", "summary": "second"},
		{"note_id": "n3", "start_ts": "2026-01-01T00:00:00Z", "summary": "third"},
	}}

	result := a.Execute(context.Background(), "s1", map[string]any{}, ec)

	require.True(t, result.Success)
	data := result.Result.(map[string]any)
	notes := data["notes"].([]map[string]any)
	require.Len(t, notes, 3)
	// A stable sort must keep notes sharing a start_ts in insertion order.
	assert.Equal(t, []string{"n1", "n2", "n3"}, []string{
		notes[0]["note_id"].(string), notes[1]["note_id"].(string), notes[2]["note_id"].(string),
	})
}
