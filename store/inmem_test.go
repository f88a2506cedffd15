package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junkim100/homebrew-trace-sub001/schemas"
	"github.com/junkim100/homebrew-trace-sub001/store"
)

func TestInMemoryNoteStoreSemanticSearchMatchesSubstring(t *testing.T) {
	t.Parallel()

	s := &store.InMemoryNoteStore{Notes: []store.Note{
		{NoteID: "n1", StartTS: "2026-01-01T00:00:00Z", Summary: "read about quantum physics"},
		{NoteID: "n2", StartTS: "2026-01-02T00:00:00Z", Summary: "went for a run"},
	}}

	notes, err := s.SemanticSearch(context.Background(), "quantum", schemas.TimeFilter{}, 10)

	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "n1", notes[0].NoteID)
}

func TestInMemoryAggregateStoreTopByKeyTypeSortsDescending(t *testing.T) {
	t.Parallel()

	s := &store.InMemoryAggregateStore{Tables: map[string][]store.AggregateItem{
		"app": {{Key: "a", Value: 10}, {Key: "b", Value: 50}, {Key: "c", Value: 20}},
	}}

	result, err := s.TopByKeyType(context.Background(), "app", schemas.TimeFilter{}, 2)

	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "b", result.Items[0].Key)
	assert.Equal(t, "c", result.Items[1].Key)
}

func TestInMemoryGraphStoreGetEntityContextNotFoundIsNotAnError(t *testing.T) {
	t.Parallel()

	s := &store.InMemoryGraphStore{Entities: map[string]store.Entity{}}

	ctx, found, err := s.GetEntityContext(context.Background(), "nonexistent", "", schemas.TimeFilter{})

	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, ctx)
}

func TestInMemoryGraphStoreExpandFromEntitiesRespectsMaxRelated(t *testing.T) {
	t.Parallel()

	s := &store.InMemoryGraphStore{
		Entities: map[string]store.Entity{
			"music": {EntityID: "e1", EntityType: "topic", CanonicalName: "music"},
		},
		Edges: map[string][]string{
			"e1": {"e2", "e3", "e4"},
		},
	}

	expansion, err := s.ExpandFromEntities(context.Background(), []string{"e1"}, 1, schemas.TimeFilter{}, nil, 0, 2)

	require.NoError(t, err)
	assert.LessOrEqual(t, len(expansion.RelatedEntities), 2)
}
