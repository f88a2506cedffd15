package executor

import (
	"sync"

	"github.com/junkim100/homebrew-trace-sub001/schemas"
)

// ExecutionContext is the append-only shared accumulator a plan's steps
// write their results into. Only the Executor writes to it, and only between
// phases: no step ever observes a phase's own in-flight results, matching
// the plan's DAG semantics (a step only ever depends on earlier phases).
//
// It satisfies actions.Context without importing the actions package, since
// the dependency runs the other way (actions are invoked by the executor).
type ExecutionContext struct {
	mu sync.RWMutex

	order   []string
	results map[string]schemas.StepResult

	notes      []map[string]any
	entities   []map[string]any
	aggregates []map[string]any
	webResults []map[string]any
}

// NewExecutionContext builds an empty context.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{results: make(map[string]schemas.StepResult)}
}

// AddResult records a step's result and, if it succeeded with a non-nil
// mapping result, folds any "notes"/"entities"/"related_entities"/
// "aggregates"/"web_results" keys into the running accumulators. A result
// that is success:true but carries an empty map performs no extraction.
func (c *ExecutionContext) AddResult(stepID string, result schemas.StepResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.results[stepID]; !exists {
		c.order = append(c.order, stepID)
	}
	c.results[stepID] = result

	if !result.Success || result.Result == nil {
		return
	}
	data, ok := result.Result.(map[string]any)
	if !ok || len(data) == 0 {
		return
	}

	if notes := asMapSlice(data["notes"]); notes != nil {
		c.notes = append(c.notes, notes...)
	}
	if entities := asMapSlice(data["entities"]); entities != nil {
		c.entities = append(c.entities, entities...)
	}
	if related := asMapSlice(data["related_entities"]); related != nil {
		c.entities = append(c.entities, related...)
	}
	if aggregates := asMapSlice(data["aggregates"]); aggregates != nil {
		c.aggregates = append(c.aggregates, aggregates...)
	}
	if webResults := asMapSlice(data["web_results"]); webResults != nil {
		c.webResults = append(c.webResults, webResults...)
	}
}

func asMapSlice(v any) []map[string]any {
	s, _ := v.([]map[string]any)
	return s
}

// StepResult implements actions.Context: look up a prior step's result.
func (c *ExecutionContext) StepResult(stepID string) (schemas.StepResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.results[stepID]
	return r, ok
}

// AllResults returns every recorded result in the order steps completed.
func (c *ExecutionContext) AllResults() []schemas.StepResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]schemas.StepResult, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.results[id])
	}
	return out
}

// AllNotes implements actions.Context: every accumulated note, deduplicated
// by note_id, keeping the first occurrence.
func (c *ExecutionContext) AllNotes() []map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return dedupByID(c.notes, "note_id")
}

// AllEntities returns every accumulated entity, deduplicated by entity_id,
// keeping the first occurrence.
func (c *ExecutionContext) AllEntities() []map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return dedupByID(c.entities, "entity_id")
}

// AllAggregates returns every accumulated aggregate, undeduplicated.
func (c *ExecutionContext) AllAggregates() []map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]map[string]any, len(c.aggregates))
	copy(out, c.aggregates)
	return out
}

// AllWebResults returns every accumulated web result, undeduplicated.
func (c *ExecutionContext) AllWebResults() []map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]map[string]any, len(c.webResults))
	copy(out, c.webResults)
	return out
}

func dedupByID(items []map[string]any, idKey string) []map[string]any {
	seen := make(map[string]struct{}, len(items))
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		id, _ := item[idKey].(string)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, item)
	}
	return out
}
