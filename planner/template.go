package planner

import "github.com/junkim100/homebrew-trace-sub001/schemas"

// TemplatePlanner builds plans for known query types from fixed topologies,
// skipping an LLM round-trip entirely. Planner.PlanForType uses it for
// relationship, memory_recall, comparison, correlation and web_augmented;
// multi_entity, simple and any other type have no fixed topology and fall
// through to LLM planning.
type TemplatePlanner struct{}

// NewTemplatePlanner constructs a TemplatePlanner. It holds no state: every
// template is a pure function of the query and optional time filter.
func NewTemplatePlanner() *TemplatePlanner {
	return &TemplatePlanner{}
}

func timeParams(filter *schemas.TimeFilter) map[string]any {
	if filter == nil || filter.IsZero() {
		return nil
	}
	return map[string]any{"time_filter": filter.ToMap()}
}

func mergeParams(base map[string]any, extra map[string]any) map[string]any {
	out := map[string]any{}
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// PlanRelationship builds the relationship-query template: a semantic search
// plus a broader hierarchical search, merged.
func (p *TemplatePlanner) PlanRelationship(query string, timeFilter *schemas.TimeFilter) (*schemas.QueryPlan, error) {
	tp := timeParams(timeFilter)
	steps := []schemas.PlanStep{
		schemas.NewPlanStep("s1", schemas.ActionSemanticSearch,
			mergeParams(map[string]any{"query": query, "limit": 10}, tp),
			nil, true, 8.0, "Initial semantic search for relevant notes"),
		schemas.NewPlanStep("s2", schemas.ActionHierarchicalSearch,
			mergeParams(map[string]any{"query": query, "max_days": 5}, tp),
			nil, false, 10.0, "Hierarchical search for broader context"),
		schemas.NewPlanStep("s3", schemas.ActionMergeResults,
			map[string]any{"result_refs": []string{"s1", "s2"}},
			[]string{"s1", "s2"}, true, 2.0, "Merge search results"),
	}
	return schemas.NewQueryPlan("", query, schemas.QueryTypeRelationship,
		"Relationship query - searching for co-occurring entities", steps, 12.0, false)
}

// PlanMemoryRecall builds the memory_recall template: a wider semantic search
// plus a day-level hierarchical search, merged.
func (p *TemplatePlanner) PlanMemoryRecall(query string, timeFilter *schemas.TimeFilter) (*schemas.QueryPlan, error) {
	tp := timeParams(timeFilter)
	steps := []schemas.PlanStep{
		schemas.NewPlanStep("s1", schemas.ActionSemanticSearch,
			mergeParams(map[string]any{"query": query, "limit": 15}, tp),
			nil, true, 8.0, "Semantic search for memory fragments"),
		schemas.NewPlanStep("s2", schemas.ActionHierarchicalSearch,
			mergeParams(map[string]any{"query": query, "max_days": 7}, tp),
			nil, false, 10.0, "Hierarchical search for day context"),
		schemas.NewPlanStep("s3", schemas.ActionMergeResults,
			map[string]any{"result_refs": []string{"s1", "s2"}},
			[]string{"s1", "s2"}, true, 2.0, "Merge and deduplicate results"),
	}
	return schemas.NewQueryPlan("", query, schemas.QueryTypeMemoryRecall,
		"Memory recall - broad semantic search to find matching memories", steps, 12.0, false)
}

// PlanComparison builds the comparison template: a broad search plus app and
// category aggregates, merged. It does not itself parse period_a/period_b
// from the query text; that remains an open question a production deployment
// resolves by extending this template or routing to LLM planning.
func (p *TemplatePlanner) PlanComparison(query string) (*schemas.QueryPlan, error) {
	steps := []schemas.PlanStep{
		schemas.NewPlanStep("s1", schemas.ActionSemanticSearch,
			map[string]any{"query": query, "limit": 20},
			nil, true, 8.0, "Search for notes related to the comparison"),
		schemas.NewPlanStep("s2", schemas.ActionAggregatesQuery,
			map[string]any{"key_type": "app", "limit": 10},
			nil, false, 3.0, "Get app usage aggregates"),
		schemas.NewPlanStep("s3", schemas.ActionAggregatesQuery,
			map[string]any{"key_type": "category", "limit": 10},
			nil, false, 3.0, "Get category aggregates"),
		schemas.NewPlanStep("s4", schemas.ActionMergeResults,
			map[string]any{"result_refs": []string{"s1", "s2", "s3"}},
			[]string{"s1", "s2", "s3"}, true, 2.0, "Merge all comparison data"),
	}
	return schemas.NewQueryPlan("", query, schemas.QueryTypeComparison,
		"Comparison query - gathering data from two periods", steps, 12.0, false)
}

// PlanCorrelation builds the correlation template: a search plus pattern
// extraction over its results.
func (p *TemplatePlanner) PlanCorrelation(query string, timeFilter *schemas.TimeFilter) (*schemas.QueryPlan, error) {
	tp := timeParams(timeFilter)
	steps := []schemas.PlanStep{
		schemas.NewPlanStep("s1", schemas.ActionSemanticSearch,
			mergeParams(map[string]any{"query": query, "limit": 20}, tp),
			nil, true, 8.0, "Search for relevant activity notes"),
		schemas.NewPlanStep("s2", schemas.ActionExtractPatterns,
			map[string]any{"pattern_type": "correlation", "notes_ref": "s1"},
			[]string{"s1"}, false, 8.0, "Extract behavioral patterns"),
	}
	return schemas.NewQueryPlan("", query, schemas.QueryTypeCorrelation,
		"Correlation query - finding patterns in activities", steps, 16.0, false)
}

// PlanWebAugmented builds the web_augmented template: a local search run in
// parallel with a web search, merged.
func (p *TemplatePlanner) PlanWebAugmented(query string, timeFilter *schemas.TimeFilter) (*schemas.QueryPlan, error) {
	tp := timeParams(timeFilter)
	steps := []schemas.PlanStep{
		schemas.NewPlanStep("s1", schemas.ActionSemanticSearch,
			mergeParams(map[string]any{"query": query, "limit": 10}, tp),
			nil, true, 8.0, "Search local notes for context"),
		schemas.NewPlanStep("s2", schemas.ActionWebSearch,
			map[string]any{"query": query, "max_results": 5},
			nil, false, 15.0, "Search web for external context"),
		schemas.NewPlanStep("s3", schemas.ActionMergeResults,
			map[string]any{"result_refs": []string{"s1", "s2"}},
			[]string{"s1", "s2"}, true, 2.0, "Merge local and web results"),
	}
	return schemas.NewQueryPlan("", query, schemas.QueryTypeWebAugmented,
		"Web-augmented query - combining local notes with external search", steps, 18.0, true)
}
