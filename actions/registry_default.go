package actions

import (
	"github.com/junkim100/homebrew-trace-sub001/llm"
	"github.com/junkim100/homebrew-trace-sub001/runtime/agent/telemetry"
	"github.com/junkim100/homebrew-trace-sub001/schemas"
	"github.com/junkim100/homebrew-trace-sub001/store"
	"github.com/junkim100/homebrew-trace-sub001/websearch"
)

// Dependencies bundles every collaborator the default catalog's actions
// need. Fields left nil disable the actions that need them only if those
// actions are never reached by a plan; NewDefaultRegistry always registers
// all fifteen names, so callers must supply every field for production use.
type Dependencies struct {
	Notes      store.NoteStore
	Aggregates store.AggregateStore
	Graph      store.GraphStore
	LLMClient  llm.Client
	WebSearch  websearch.Provider
	Logger     telemetry.Logger
}

// NewDefaultRegistry builds a Registry with all fifteen catalog actions
// registered against deps.
func NewDefaultRegistry(deps Dependencies) *Registry {
	logger := deps.Logger
	if logger == nil {
		logger = telemetry.NewNoopLogger()
	}

	r := NewRegistry()
	r.Register(schemas.ActionSemanticSearch, func() Action { return &SemanticSearch{Notes: deps.Notes} })
	r.Register(schemas.ActionEntitySearch, func() Action { return &EntitySearch{Notes: deps.Notes} })
	r.Register(schemas.ActionHierarchicalSearch, func() Action { return &HierarchicalSearch{Notes: deps.Notes} })
	r.Register(schemas.ActionTimeRangeNotes, func() Action { return &TimeRangeNotes{Notes: deps.Notes} })
	r.Register(schemas.ActionAggregatesQuery, func() Action { return &AggregatesQuery{Aggregates: deps.Aggregates} })

	r.Register(schemas.ActionGraphExpand, func() Action { return &GraphExpand{Graph: deps.Graph} })
	r.Register(schemas.ActionFindConnections, func() Action { return &FindConnections{Graph: deps.Graph} })
	r.Register(schemas.ActionGetCoOccurrences, func() Action { return &GetCoOccurrences{Graph: deps.Graph} })
	r.Register(schemas.ActionGetEntityContext, func() Action { return &GetEntityContext{Graph: deps.Graph} })
	r.Register(schemas.ActionFilterByEdgeType, func() Action { return &FilterByEdgeType{Graph: deps.Graph} })

	r.Register(schemas.ActionExtractPatterns, func() Action { return &ExtractPatterns{Client: deps.LLMClient, Logger: logger} })
	r.Register(schemas.ActionComparePeriods, func() Action {
		return &ComparePeriods{Aggregates: deps.Aggregates, Client: deps.LLMClient, Logger: logger}
	})
	r.Register(schemas.ActionTemporalSequence, func() Action { return &TemporalSequence{} })
	r.Register(schemas.ActionMergeResults, func() Action { return &MergeResults{} })

	r.Register(schemas.ActionWebSearch, func() Action { return &WebSearch{Provider: deps.WebSearch} })

	return r
}
