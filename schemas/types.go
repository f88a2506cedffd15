// Package schemas defines the typed plan, step, and result records shared by
// the classifier, planner, executor, and action catalog.
package schemas

import "time"

// QueryType tags the category of question the classifier or planner
// detected. It is a closed set; unrecognized values should fall back to
// QueryTypeSimple rather than propagate.
type QueryType string

// The seven recognized query types.
const (
	QueryTypeRelationship QueryType = "relationship"
	QueryTypeMemoryRecall QueryType = "memory_recall"
	QueryTypeComparison   QueryType = "comparison"
	QueryTypeCorrelation  QueryType = "correlation"
	QueryTypeWebAugmented QueryType = "web_augmented"
	QueryTypeMultiEntity  QueryType = "multi_entity"
	QueryTypeSimple       QueryType = "simple"
)

// ActionName is a closed enumeration of the fifteen registered action names.
type ActionName string

// The fifteen catalog actions, grouped by concern.
const (
	ActionSemanticSearch     ActionName = "semantic_search"
	ActionEntitySearch       ActionName = "entity_search"
	ActionGraphExpand        ActionName = "graph_expand"
	ActionAggregatesQuery    ActionName = "aggregates_query"
	ActionHierarchicalSearch ActionName = "hierarchical_search"
	ActionTimeRangeNotes     ActionName = "time_range_notes"
	ActionFindConnections    ActionName = "find_connections"
	ActionGetCoOccurrences   ActionName = "get_co_occurrences"
	ActionGetEntityContext   ActionName = "get_entity_context"
	ActionComparePeriods     ActionName = "compare_periods"
	ActionExtractPatterns    ActionName = "extract_patterns"
	ActionMergeResults       ActionName = "merge_results"
	ActionFilterByEdgeType   ActionName = "filter_by_edge_type"
	ActionTemporalSequence   ActionName = "temporal_sequence"
	ActionWebSearch          ActionName = "web_search"
)

// EdgeType is a relation between two entities in the graph store. The set is
// closed; actions pass it through to the graph store as an opaque string.
type EdgeType string

// The closed edge-type vocabulary.
const (
	EdgeAboutTopic     EdgeType = "ABOUT_TOPIC"
	EdgeStudiedWhile   EdgeType = "STUDIED_WHILE"
	EdgeListenedTo     EdgeType = "LISTENED_TO"
	EdgeWatched        EdgeType = "WATCHED"
	EdgeUsedApp        EdgeType = "USED_APP"
	EdgeVisitedDomain  EdgeType = "VISITED_DOMAIN"
	EdgeCoOccurredWith EdgeType = "CO_OCCURRED_WITH"
	EdgeDocReference   EdgeType = "DOC_REFERENCE"
)

// TimeFilter describes a closed or half-open time interval, optionally
// carrying the natural-language description it was resolved from. A zero
// value (all fields empty) means "no filter".
type TimeFilter struct {
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	Description string     `json:"description,omitempty"`
}

// IsZero reports whether the filter carries no constraint at all.
func (t TimeFilter) IsZero() bool {
	return t.Start == nil && t.End == nil && t.Description == ""
}

// ToMap renders the filter the way the planner embeds it into step params.
func (t TimeFilter) ToMap() map[string]any {
	m := map[string]any{"description": t.Description}
	if t.Start != nil {
		m["start"] = t.Start.Format(time.RFC3339)
	}
	if t.End != nil {
		m["end"] = t.End.Format(time.RFC3339)
	}
	return m
}
