package actions

import (
	"context"
	"errors"
	"time"

	"github.com/junkim100/homebrew-trace-sub001/schemas"
	"github.com/junkim100/homebrew-trace-sub001/store"
)

// SemanticSearch runs a vector similarity search over notes.
type SemanticSearch struct {
	Notes store.NoteStore
}

func (a *SemanticSearch) Name() schemas.ActionName { return schemas.ActionSemanticSearch }
func (a *SemanticSearch) DefaultTimeout() float64   { return schemas.DefaultStepTimeout }

func (a *SemanticSearch) Execute(ctx context.Context, stepID string, params map[string]any, ec Context) schemas.StepResult {
	start := time.Now()
	query := paramString(params, "query", "")
	filter := paramTimeFilter(params, "time_filter")
	limit := paramInt(params, "limit", 10)

	notes, err := a.Notes.SemanticSearch(ctx, query, filter, limit)
	if err != nil {
		return failure(stepID, a.Name(), start, err)
	}
	return success(stepID, a.Name(), start, map[string]any{"notes": notesToMaps(notes)})
}

// EntitySearch finds notes mentioning a specific entity.
type EntitySearch struct {
	Notes store.NoteStore
}

func (a *EntitySearch) Name() schemas.ActionName { return schemas.ActionEntitySearch }
func (a *EntitySearch) DefaultTimeout() float64   { return schemas.DefaultStepTimeout }

func (a *EntitySearch) Execute(ctx context.Context, stepID string, params map[string]any, ec Context) schemas.StepResult {
	start := time.Now()
	entityName := paramString(params, "entity_name", "")
	entityType := paramString(params, "entity_type", "")
	filter := paramTimeFilter(params, "time_filter")
	limit := paramInt(params, "limit", 10)

	notes, entities, err := a.Notes.EntitySearch(ctx, entityName, entityType, filter, limit)
	if err != nil {
		return failure(stepID, a.Name(), start, err)
	}
	return success(stepID, a.Name(), start, map[string]any{
		"notes":    notesToMaps(notes),
		"entities": entitiesToMaps(entities),
	})
}

// HierarchicalSearch runs a two-stage search: daily summaries first, then
// hourly notes, bounded to the last max_days days.
type HierarchicalSearch struct {
	Notes store.NoteStore
}

func (a *HierarchicalSearch) Name() schemas.ActionName { return schemas.ActionHierarchicalSearch }
func (a *HierarchicalSearch) DefaultTimeout() float64   { return schemas.DefaultStepTimeout }

func (a *HierarchicalSearch) Execute(ctx context.Context, stepID string, params map[string]any, ec Context) schemas.StepResult {
	start := time.Now()
	query := paramString(params, "query", "")
	filter := paramTimeFilter(params, "time_filter")
	maxDays := paramInt(params, "max_days", 5)

	notes, err := a.Notes.HierarchicalSearch(ctx, query, filter, maxDays)
	if err != nil {
		return failure(stepID, a.Name(), start, err)
	}
	return success(stepID, a.Name(), start, map[string]any{"notes": notesToMaps(notes)})
}

// TimeRangeNotes returns all notes in a time range, required.
type TimeRangeNotes struct {
	Notes store.NoteStore
}

func (a *TimeRangeNotes) Name() schemas.ActionName { return schemas.ActionTimeRangeNotes }
func (a *TimeRangeNotes) DefaultTimeout() float64   { return schemas.DefaultStepTimeout }

func (a *TimeRangeNotes) Execute(ctx context.Context, stepID string, params map[string]any, ec Context) schemas.StepResult {
	start := time.Now()
	if _, ok := params["time_filter"]; !ok {
		return failure(stepID, a.Name(), start, errors.New("time_filter is required"))
	}
	filter := paramTimeFilter(params, "time_filter")
	noteType := paramString(params, "note_type", "")
	limit := paramInt(params, "limit", 100)

	notes, err := a.Notes.TimeRangeNotes(ctx, filter, noteType, limit)
	if err != nil {
		return failure(stepID, a.Name(), start, err)
	}
	return success(stepID, a.Name(), start, map[string]any{"notes": notesToMaps(notes)})
}

// AggregatesQuery fetches pre-computed time rollups for one key type (app,
// domain, topic, artist, track, category).
type AggregatesQuery struct {
	Aggregates store.AggregateStore
}

func (a *AggregatesQuery) Name() schemas.ActionName { return schemas.ActionAggregatesQuery }
func (a *AggregatesQuery) DefaultTimeout() float64   { return schemas.DefaultStepTimeout }

func (a *AggregatesQuery) Execute(ctx context.Context, stepID string, params map[string]any, ec Context) schemas.StepResult {
	start := time.Now()
	keyType := paramString(params, "key_type", "")
	filter := paramTimeFilter(params, "time_filter")
	limit := paramInt(params, "limit", 10)

	result, err := a.Aggregates.TopByKeyType(ctx, keyType, filter, limit)
	if err != nil {
		return failure(stepID, a.Name(), start, err)
	}
	items := make([]map[string]any, len(result.Items))
	for i, it := range result.Items {
		items[i] = map[string]any{"key": it.Key, "value": it.Value}
	}
	return success(stepID, a.Name(), start, map[string]any{"aggregates": items})
}

func notesToMaps(notes []store.Note) []map[string]any {
	out := make([]map[string]any, len(notes))
	for i, n := range notes {
		out[i] = n.ToMap()
	}
	return out
}

func entitiesToMaps(entities []store.Entity) []map[string]any {
	out := make([]map[string]any, len(entities))
	for i, e := range entities {
		out[i] = e.ToMap()
	}
	return out
}
