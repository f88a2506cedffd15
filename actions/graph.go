package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/junkim100/homebrew-trace-sub001/schemas"
	"github.com/junkim100/homebrew-trace-sub001/store"
)

// GraphExpand follows edges from an entity to find related entities.
type GraphExpand struct {
	Graph store.GraphStore
}

func (a *GraphExpand) Name() schemas.ActionName { return schemas.ActionGraphExpand }
func (a *GraphExpand) DefaultTimeout() float64   { return 6.0 }

func (a *GraphExpand) Execute(ctx context.Context, stepID string, params map[string]any, ec Context) schemas.StepResult {
	start := time.Now()
	name := a.Name()

	entityName := paramString(params, "entity_name", "")
	if entityName == "" {
		return failure(stepID, name, start, errors.New("entity_name is required"))
	}
	entityType := paramString(params, "entity_type", "")
	edgeTypes := paramEdgeTypes(params, "edge_types")
	hops := paramInt(params, "hops", 1)
	filter := paramTimeFilter(params, "time_filter")
	minWeight := paramFloat(params, "min_weight", 0.3)
	maxRelated := paramInt(params, "max_related", 20)

	entityCtx, found, err := a.Graph.GetEntityContext(ctx, entityName, entityType, filter)
	if err != nil {
		return failure(stepID, name, start, err)
	}
	if !found {
		return success(stepID, name, start, map[string]any{
			"related_entities": []map[string]any{},
			"expanded_notes":   []map[string]any{},
			"entity_name":      entityName,
			"message":          fmt.Sprintf("Entity '%s' not found", entityName),
		})
	}

	entity, _ := entityCtx["entity"].(map[string]any)
	entityID, _ := entity["entity_id"].(string)
	if entityID == "" {
		return success(stepID, name, start, map[string]any{
			"related_entities": []map[string]any{},
			"expanded_notes":   []map[string]any{},
			"entity_name":      entityName,
		})
	}

	expansion, err := a.Graph.ExpandFromEntities(ctx, []string{entityID}, hops, filter, edgeTypes, minWeight, maxRelated)
	if err != nil {
		return failure(stepID, name, start, err)
	}

	return success(stepID, name, start, map[string]any{
		"related_entities": entitiesToMaps(expansion.RelatedEntities),
		"expanded_notes":   notesToMaps(expansion.ExpandedNotes),
		"entity_name":      entityName,
		"hops_used":        hops,
	})
}

// FindConnections finds path(s) between two entities in the graph.
type FindConnections struct {
	Graph store.GraphStore
}

func (a *FindConnections) Name() schemas.ActionName { return schemas.ActionFindConnections }
func (a *FindConnections) DefaultTimeout() float64   { return 8.0 }

func (a *FindConnections) Execute(ctx context.Context, stepID string, params map[string]any, ec Context) schemas.StepResult {
	start := time.Now()
	name := a.Name()

	entityA := paramString(params, "entity_a", "")
	entityB := paramString(params, "entity_b", "")
	if entityA == "" || entityB == "" {
		return failure(stepID, name, start, errors.New("both entity_a and entity_b are required"))
	}
	maxHops := paramInt(params, "max_hops", 3)

	paths, err := a.Graph.FindConnections(ctx, entityA, entityB, maxHops)
	if err != nil {
		return failure(stepID, name, start, err)
	}

	pathsData := make([][]map[string]any, len(paths))
	for i, path := range paths {
		pathsData[i] = entitiesToMaps(path)
	}

	return success(stepID, name, start, map[string]any{
		"paths":       pathsData,
		"entity_a":    entityA,
		"entity_b":    entityB,
		"paths_found": len(pathsData),
	})
}

// GetCoOccurrences finds entities that appeared together with the given
// entity along one edge type (default CO_OCCURRED_WITH).
type GetCoOccurrences struct {
	Graph store.GraphStore
}

func (a *GetCoOccurrences) Name() schemas.ActionName { return schemas.ActionGetCoOccurrences }
func (a *GetCoOccurrences) DefaultTimeout() float64   { return 5.0 }

func (a *GetCoOccurrences) Execute(ctx context.Context, stepID string, params map[string]any, ec Context) schemas.StepResult {
	start := time.Now()
	name := a.Name()

	entityName := paramString(params, "entity_name", "")
	if entityName == "" {
		return failure(stepID, name, start, errors.New("entity_name is required"))
	}
	edgeType := paramString(params, "edge_type", string(schemas.EdgeCoOccurredWith))
	filter := paramTimeFilter(params, "time_filter")
	limit := paramInt(params, "limit", 10)

	entityCtx, found, err := a.Graph.GetEntityContext(ctx, entityName, "", filter)
	if err != nil {
		return failure(stepID, name, start, err)
	}
	if !found {
		return success(stepID, name, start, map[string]any{
			"co_occurrences": []map[string]any{},
			"entity_name":    entityName,
			"message":        fmt.Sprintf("Entity '%s' not found", entityName),
		})
	}

	entity, _ := entityCtx["entity"].(map[string]any)
	entityID, _ := entity["entity_id"].(string)
	if entityID == "" {
		return success(stepID, name, start, map[string]any{
			"co_occurrences": []map[string]any{},
			"entity_name":    entityName,
		})
	}

	expansion, err := a.Graph.ExpandFromEntities(ctx, []string{entityID}, 1, filter, []schemas.EdgeType{schemas.EdgeType(edgeType)}, 0.0, limit)
	if err != nil {
		return failure(stepID, name, start, err)
	}

	return success(stepID, name, start, map[string]any{
		"co_occurrences": entitiesToMaps(expansion.RelatedEntities),
		"entity_name":    entityName,
		"edge_type":      edgeType,
	})
}

// GetEntityContext returns the full context for an entity directly, without
// expansion.
type GetEntityContext struct {
	Graph store.GraphStore
}

func (a *GetEntityContext) Name() schemas.ActionName { return schemas.ActionGetEntityContext }
func (a *GetEntityContext) DefaultTimeout() float64   { return 5.0 }

func (a *GetEntityContext) Execute(ctx context.Context, stepID string, params map[string]any, ec Context) schemas.StepResult {
	start := time.Now()
	name := a.Name()

	entityName := paramString(params, "entity_name", "")
	if entityName == "" {
		return failure(stepID, name, start, errors.New("entity_name is required"))
	}
	entityType := paramString(params, "entity_type", "")
	filter := paramTimeFilter(params, "time_filter")

	entityCtx, _, err := a.Graph.GetEntityContext(ctx, entityName, entityType, filter)
	if err != nil {
		return failure(stepID, name, start, err)
	}
	return success(stepID, name, start, entityCtx)
}
