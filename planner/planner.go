// Package planner turns a classified query into an executable QueryPlan,
// either from a fixed per-type template or, for types without one, by asking
// an LLM to produce one directly.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/junkim100/homebrew-trace-sub001/llm"
	"github.com/junkim100/homebrew-trace-sub001/runtime/agent/telemetry"
	"github.com/junkim100/homebrew-trace-sub001/schemas"
)

// plannerModel is the model used for LLM-based planning: capable enough to
// follow the action catalog but cheap enough to run on every complex query
// that has no template.
const plannerModel = "gpt-4o-mini"

const maxPlanAttempts = 3

// planResponseSchema is the JSON Schema the LLM's plan response must satisfy
// before it is even unmarshaled: a schema violation is treated the same as
// a parse failure, triggering the same retry-with-correction path.
var planResponseSchema = mustCompilePlanSchema()

func mustCompilePlanSchema() *llm.ResponseSchema {
	schema, err := llm.CompileResponseSchema("query-plan-response", map[string]any{
		"type":     "object",
		"required": []string{"query_type", "reasoning", "steps"},
		"properties": map[string]any{
			"query_type":             map[string]any{"type": "string"},
			"reasoning":              map[string]any{"type": "string"},
			"estimated_time_seconds": map[string]any{"type": "number"},
			"requires_web_search":    map[string]any{"type": "boolean"},
			"steps": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":     "object",
					"required": []string{"action"},
					"properties": map[string]any{
						"step_id":         map[string]any{"type": "string"},
						"action":          map[string]any{"type": "string"},
						"params":          map[string]any{"type": "object"},
						"depends_on":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"required":        map[string]any{"type": "boolean"},
						"timeout_seconds": map[string]any{"type": "number"},
						"description":     map[string]any{"type": "string"},
					},
				},
			},
		},
	})
	if err != nil {
		panic(fmt.Sprintf("planner: compiling plan response schema: %v", err))
	}
	return schema
}

// Option configures a Planner.
type Option func(*options)

type options struct {
	logger telemetry.Logger
	model  string
}

// WithLogger attaches a logger for planning diagnostics.
func WithLogger(l telemetry.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithModel overrides the default planning model identifier.
func WithModel(model string) Option {
	return func(o *options) { o.model = model }
}

// Planner generates QueryPlans. Template-backed types are resolved without
// touching the network; everything else round-trips through client.
type Planner struct {
	client   llm.Client
	template *TemplatePlanner
	logger   telemetry.Logger
	model    string
}

// New builds a Planner. client is required; the template planner is always
// NewTemplatePlanner().
func New(client llm.Client, opts ...Option) *Planner {
	o := options{logger: telemetry.NewNoopLogger(), model: plannerModel}
	for _, opt := range opts {
		opt(&o)
	}
	return &Planner{
		client:   client,
		template: NewTemplatePlanner(),
		logger:   o.logger,
		model:    o.model,
	}
}

// PlanForType generates a plan using the predefined template for query_type
// when one exists; otherwise it falls through to LLM planning. multi_entity
// (and any future type without a template) has no fixed topology, so it
// always goes through the LLM.
func (p *Planner) PlanForType(ctx context.Context, query string, queryType schemas.QueryType, timeFilterDescription string) (*schemas.QueryPlan, error) {
	var timeFilter *schemas.TimeFilter
	if timeFilterDescription != "" {
		timeFilter = &schemas.TimeFilter{Description: timeFilterDescription}
	}

	switch queryType {
	case schemas.QueryTypeRelationship:
		return p.template.PlanRelationship(query, timeFilter)
	case schemas.QueryTypeMemoryRecall:
		return p.template.PlanMemoryRecall(query, timeFilter)
	case schemas.QueryTypeComparison:
		return p.template.PlanComparison(query)
	case schemas.QueryTypeCorrelation:
		return p.template.PlanCorrelation(query, timeFilter)
	case schemas.QueryTypeWebAugmented:
		return p.template.PlanWebAugmented(query, timeFilter)
	default:
		return p.Plan(ctx, query, timeFilterDescription, nil)
	}
}

// planStepJSON mirrors the wire shape of one step in the LLM's JSON response.
type planStepJSON struct {
	StepID         string         `json:"step_id"`
	Action         string         `json:"action"`
	Params         map[string]any `json:"params"`
	DependsOn      []string       `json:"depends_on"`
	Required       *bool          `json:"required"`
	TimeoutSeconds float64        `json:"timeout_seconds"`
	Description    string         `json:"description"`
}

// planJSON mirrors the wire shape of the LLM's JSON response, per the
// "Output Format" section of systemPrompt.
type planJSON struct {
	QueryType            string         `json:"query_type"`
	Reasoning            string         `json:"reasoning"`
	Steps                []planStepJSON `json:"steps"`
	EstimatedTimeSeconds float64        `json:"estimated_time_seconds"`
	RequiresWebSearch    bool           `json:"requires_web_search"`
}

// Plan generates an execution plan by calling the LLM, retrying up to
// maxPlanAttempts times with the prior error appended to the conversation,
// and falling back to a single hierarchical_search plan if every attempt
// fails to produce a valid plan. Only parse and validation failures are
// retried: an error from the client itself goes straight to the fallback.
func (p *Planner) Plan(ctx context.Context, query string, timeContext string, availableDataSummary map[string]string) (*schemas.QueryPlan, error) {
	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildUserPrompt(query, timeContext, availableDataSummary)},
	}

	var lastErr error
	var lastRaw string
	for attempt := 0; attempt < maxPlanAttempts; attempt++ {
		resp, err := p.client.Complete(ctx, llm.Request{
			Model:       p.model,
			Messages:    messages,
			Temperature: 0.2,
			MaxTokens:   2000,
			JSONMode:    true,
		})
		if err != nil {
			lastErr = err
			p.logger.Warn(ctx, "plan generation attempt failed", "attempt", attempt+1, "error", err)
			break
		}
		lastRaw = resp.Content

		plan, parseErr := p.parseAndValidate(resp.Content, query)
		if parseErr == nil {
			p.logger.Info(ctx, "generated plan", "steps", len(plan.Steps), "query_type", plan.QueryType)
			return plan, nil
		}

		lastErr = parseErr
		p.logger.Warn(ctx, "plan generation attempt failed", "attempt", attempt+1, "error", parseErr)
		messages = append(messages,
			llm.Message{Role: "assistant", Content: resp.Content},
			llm.Message{Role: "user", Content: fmt.Sprintf("The previous response had an error: %s. Please fix and output valid JSON.", parseErr)},
		)
	}

	p.logger.Error(ctx, "planning failed after retries, using fallback plan", "error", lastErr, "last_response", lastRaw)
	plan, err := p.fallbackPlan(query)
	if err != nil {
		return nil, fmt.Errorf("planner: fallback plan construction: %w", err)
	}
	return plan, nil
}

func (p *Planner) parseAndValidate(raw string, query string) (*schemas.QueryPlan, error) {
	if err := planResponseSchema.Validate([]byte(raw)); err != nil {
		return nil, err
	}

	var parsed planJSON
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	steps := make([]schemas.PlanStep, len(parsed.Steps))
	for i, s := range parsed.Steps {
		stepID := s.StepID
		if stepID == "" {
			stepID = fmt.Sprintf("s%d", i+1)
		}
		required := true
		if s.Required != nil {
			required = *s.Required
		}
		steps[i] = schemas.NewPlanStep(stepID, schemas.ActionName(s.Action), s.Params, s.DependsOn, required, s.TimeoutSeconds, s.Description)
	}

	queryType := schemas.QueryType(parsed.QueryType)
	switch queryType {
	case schemas.QueryTypeRelationship, schemas.QueryTypeMemoryRecall, schemas.QueryTypeComparison,
		schemas.QueryTypeCorrelation, schemas.QueryTypeWebAugmented, schemas.QueryTypeMultiEntity, schemas.QueryTypeSimple:
	default:
		queryType = schemas.QueryTypeSimple
	}

	return schemas.NewQueryPlan("", query, queryType, parsed.Reasoning, steps, parsed.EstimatedTimeSeconds, parsed.RequiresWebSearch)
}

// fallbackPlan is the static plan used when every LLM attempt fails:
// a single required hierarchical_search step over the last 5 days.
func (p *Planner) fallbackPlan(query string) (*schemas.QueryPlan, error) {
	steps := []schemas.PlanStep{
		schemas.NewPlanStep("s1", schemas.ActionHierarchicalSearch,
			map[string]any{"query": query, "max_days": 5},
			nil, true, 10.0, "Fallback hierarchical search"),
	}
	plan, err := schemas.NewQueryPlan("fallback-"+shortID(), query, schemas.QueryTypeSimple,
		"Fallback plan due to planning failure - using hierarchical search", steps, 10.0, false)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// shortID mirrors schemas.shortID's format for fallback plan IDs.
func shortID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
