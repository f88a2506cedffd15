// Package store defines the opaque note/vector/graph/aggregate collaborators
// the action catalog queries. These are external services; this package only
// fixes the Go-side contract and record shapes the actions depend on for
// deduplication (note_id, entity_id) and ordering (start_ts).
package store

import (
	"context"

	"github.com/junkim100/homebrew-trace-sub001/schemas"
)

// Note is a summary record over a time range.
type Note struct {
	NoteID     string   `json:"note_id"`
	StartTS    string   `json:"start_ts"`
	Summary    string   `json:"summary"`
	Categories []string `json:"categories,omitempty"`
}

// ToMap renders the note as the untyped map shape actions thread through
// StepResult.Result, since that is the shape the executor's accumulators and
// merge_results operate on.
func (n Note) ToMap() map[string]any {
	m := map[string]any{
		"note_id":  n.NoteID,
		"start_ts": n.StartTS,
		"summary":  n.Summary,
	}
	if n.Categories != nil {
		m["categories"] = n.Categories
	}
	return m
}

// Entity is a domain object with a stable identity.
type Entity struct {
	EntityID      string `json:"entity_id"`
	EntityType    string `json:"entity_type"`
	CanonicalName string `json:"canonical_name"`
}

// ToMap renders the entity as an untyped map.
func (e Entity) ToMap() map[string]any {
	return map[string]any{
		"entity_id":      e.EntityID,
		"entity_type":    e.EntityType,
		"canonical_name": e.CanonicalName,
	}
}

// AggregateItem is one {key, value} rollup entry.
type AggregateItem struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// AggregateResult is the top-N rollup for one key_type over one time range.
type AggregateResult struct {
	Items []AggregateItem
}

// ExpansionResult is the outcome of expanding from a set of entities along
// graph edges.
type ExpansionResult struct {
	RelatedEntities []Entity
	ExpandedNotes   []Note
}

// NoteStore is the opaque note/vector retrieval collaborator.
type NoteStore interface {
	SemanticSearch(ctx context.Context, query string, filter schemas.TimeFilter, limit int) ([]Note, error)
	HierarchicalSearch(ctx context.Context, query string, filter schemas.TimeFilter, maxDays int) ([]Note, error)
	TimeRangeNotes(ctx context.Context, filter schemas.TimeFilter, noteType string, limit int) ([]Note, error)
	EntitySearch(ctx context.Context, entityName, entityType string, filter schemas.TimeFilter, limit int) ([]Note, []Entity, error)
}

// AggregateStore is the opaque aggregate-rollup collaborator.
type AggregateStore interface {
	TopByKeyType(ctx context.Context, keyType string, filter schemas.TimeFilter, limit int) (AggregateResult, error)
}

// GraphStore is the opaque entity-graph collaborator.
type GraphStore interface {
	// GetEntityContext resolves an entity by name and returns its full
	// context. A nil error with ok=false means the entity was not found;
	// callers treat a missing entity as a successful empty result, not an
	// error.
	GetEntityContext(ctx context.Context, entityName, entityType string, filter schemas.TimeFilter) (map[string]any, bool, error)
	ExpandFromEntities(ctx context.Context, entityIDs []string, hops int, filter schemas.TimeFilter, edgeTypes []schemas.EdgeType, minWeight float64, maxRelated int) (ExpansionResult, error)
	FindConnections(ctx context.Context, entityAName, entityBName string, maxHops int) ([][]Entity, error)
}
