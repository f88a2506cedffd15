package actions

import (
	"context"
	"errors"
	"time"

	"github.com/junkim100/homebrew-trace-sub001/schemas"
	"github.com/junkim100/homebrew-trace-sub001/store"
)

// FilterByEdgeType returns the entities reachable from entity_name in one hop
// along exactly one edge type. Unlike graph_expand (which accepts a list of
// edge types and returns everything that matches any of them) it takes a
// single edge type, e.g. just the STUDIED_WHILE or LISTENED_TO neighbours.
// It queries the graph store directly; it does not read or filter the
// results of earlier steps.
type FilterByEdgeType struct {
	Graph store.GraphStore
}

func (a *FilterByEdgeType) Name() schemas.ActionName { return schemas.ActionFilterByEdgeType }
func (a *FilterByEdgeType) DefaultTimeout() float64   { return schemas.DefaultStepTimeout }

func (a *FilterByEdgeType) Execute(ctx context.Context, stepID string, params map[string]any, ec Context) schemas.StepResult {
	start := time.Now()
	name := a.Name()

	entityName := paramString(params, "entity_name", "")
	if entityName == "" {
		return failure(stepID, name, start, errors.New("entity_name is required"))
	}
	edgeType := paramString(params, "edge_type", "")
	if edgeType == "" {
		return failure(stepID, name, start, errors.New("edge_type is required"))
	}
	filter := paramTimeFilter(params, "time_filter")
	maxRelated := paramInt(params, "max_related", 20)

	entityCtx, found, err := a.Graph.GetEntityContext(ctx, entityName, "", filter)
	if err != nil {
		return failure(stepID, name, start, err)
	}
	if !found {
		return success(stepID, name, start, map[string]any{
			"related_entities": []map[string]any{},
			"entity_name":       entityName,
			"edge_type":         edgeType,
		})
	}
	entity, _ := entityCtx["entity"].(map[string]any)
	entityID, _ := entity["entity_id"].(string)
	if entityID == "" {
		return success(stepID, name, start, map[string]any{
			"related_entities": []map[string]any{},
			"entity_name":       entityName,
			"edge_type":         edgeType,
		})
	}

	expansion, err := a.Graph.ExpandFromEntities(ctx, []string{entityID}, 1, filter, []schemas.EdgeType{schemas.EdgeType(edgeType)}, 0.0, maxRelated)
	if err != nil {
		return failure(stepID, name, start, err)
	}

	return success(stepID, name, start, map[string]any{
		"related_entities": entitiesToMaps(expansion.RelatedEntities),
		"entity_name":       entityName,
		"edge_type":         edgeType,
	})
}
