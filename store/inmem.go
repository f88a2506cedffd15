package store

import (
	"context"
	"sort"
	"strings"

	"github.com/junkim100/homebrew-trace-sub001/schemas"
)

// InMemoryNoteStore is a reference NoteStore used by tests and the demo CLI.
// It performs naive substring matching rather than real semantic retrieval;
// production deployments wire a real vector/note service to the same
// interface instead of this type.
type InMemoryNoteStore struct {
	Notes []Note
}

func (s *InMemoryNoteStore) withinFilter(ts string, filter schemas.TimeFilter) bool {
	if filter.IsZero() {
		return true
	}
	if filter.Start != nil && ts < filter.Start.Format("2006-01-02T15:04:05Z07:00") {
		return false
	}
	if filter.End != nil && ts > filter.End.Format("2006-01-02T15:04:05Z07:00") {
		return false
	}
	return true
}

func (s *InMemoryNoteStore) SemanticSearch(ctx context.Context, query string, filter schemas.TimeFilter, limit int) ([]Note, error) {
	q := strings.ToLower(query)
	var out []Note
	for _, n := range s.Notes {
		if !s.withinFilter(n.StartTS, filter) {
			continue
		}
		if q == "" || strings.Contains(strings.ToLower(n.Summary), q) {
			out = append(out, n)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *InMemoryNoteStore) HierarchicalSearch(ctx context.Context, query string, filter schemas.TimeFilter, maxDays int) ([]Note, error) {
	return s.SemanticSearch(ctx, query, filter, 0)
}

func (s *InMemoryNoteStore) TimeRangeNotes(ctx context.Context, filter schemas.TimeFilter, noteType string, limit int) ([]Note, error) {
	var out []Note
	for _, n := range s.Notes {
		if !s.withinFilter(n.StartTS, filter) {
			continue
		}
		out = append(out, n)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTS < out[j].StartTS })
	return out, nil
}

func (s *InMemoryNoteStore) EntitySearch(ctx context.Context, entityName, entityType string, filter schemas.TimeFilter, limit int) ([]Note, []Entity, error) {
	notes, _ := s.SemanticSearch(ctx, entityName, filter, limit)
	return notes, nil, nil
}

// InMemoryAggregateStore is a reference AggregateStore backed by a static
// per-key-type table.
type InMemoryAggregateStore struct {
	Tables map[string][]AggregateItem
}

func (s *InMemoryAggregateStore) TopByKeyType(ctx context.Context, keyType string, filter schemas.TimeFilter, limit int) (AggregateResult, error) {
	items := s.Tables[keyType]
	sorted := make([]AggregateItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Value > sorted[j].Value })
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return AggregateResult{Items: sorted}, nil
}

// InMemoryGraphStore is a reference GraphStore backed by static entities and
// adjacency edges.
type InMemoryGraphStore struct {
	Entities map[string]Entity            // keyed by canonical_name, lowercased
	Edges    map[string][]string          // entity_id -> related entity_ids
	Notes    map[string][]Note            // entity_id -> notes mentioning it
}

func (s *InMemoryGraphStore) resolve(name string) (Entity, bool) {
	e, ok := s.Entities[strings.ToLower(name)]
	return e, ok
}

func (s *InMemoryGraphStore) GetEntityContext(ctx context.Context, entityName, entityType string, filter schemas.TimeFilter) (map[string]any, bool, error) {
	e, ok := s.resolve(entityName)
	if !ok {
		return nil, false, nil
	}
	return map[string]any{
		"entity":     e.ToMap(),
		"edge_count": len(s.Edges[e.EntityID]),
	}, true, nil
}

func (s *InMemoryGraphStore) ExpandFromEntities(ctx context.Context, entityIDs []string, hops int, filter schemas.TimeFilter, edgeTypes []schemas.EdgeType, minWeight float64, maxRelated int) (ExpansionResult, error) {
	seen := make(map[string]struct{})
	var related []Entity
	var notes []Note
	frontier := append([]string{}, entityIDs...)
	for h := 0; h < hops && len(frontier) > 0; h++ {
		var next []string
		for _, id := range frontier {
			for _, relID := range s.Edges[id] {
				if _, ok := seen[relID]; ok {
					continue
				}
				seen[relID] = struct{}{}
				for _, e := range s.Entities {
					if e.EntityID == relID {
						related = append(related, e)
						notes = append(notes, s.Notes[relID]...)
						break
					}
				}
				next = append(next, relID)
				if maxRelated > 0 && len(related) >= maxRelated {
					break
				}
			}
		}
		frontier = next
	}
	return ExpansionResult{RelatedEntities: related, ExpandedNotes: notes}, nil
}

func (s *InMemoryGraphStore) FindConnections(ctx context.Context, entityAName, entityBName string, maxHops int) ([][]Entity, error) {
	a, ok := s.resolve(entityAName)
	if !ok {
		return nil, nil
	}
	b, ok := s.resolve(entityBName)
	if !ok {
		return nil, nil
	}
	type frame struct {
		id   string
		path []Entity
	}
	start := frame{id: a.EntityID, path: []Entity{a}}
	queue := []frame{start}
	visited := map[string]struct{}{a.EntityID: {}}
	var paths [][]Entity
	for len(queue) > 0 && len(queue[0].path) <= maxHops+1 {
		cur := queue[0]
		queue = queue[1:]
		if cur.id == b.EntityID && len(cur.path) > 1 {
			paths = append(paths, cur.path)
			continue
		}
		for _, relID := range s.Edges[cur.id] {
			if _, ok := visited[relID]; ok {
				continue
			}
			var relEntity Entity
			for _, e := range s.Entities {
				if e.EntityID == relID {
					relEntity = e
					break
				}
			}
			visited[relID] = struct{}{}
			queue = append(queue, frame{id: relID, path: append(append([]Entity{}, cur.path...), relEntity)})
		}
	}
	return paths, nil
}
