package schemas

import (
	"strings"

	"github.com/google/uuid"
)

// Step timeout bounds.
const (
	MinStepTimeoutSeconds = 1.0
	MaxStepTimeoutSeconds = 30.0
	DefaultStepTimeout    = 10.0
)

// Plan size and estimate bounds.
const (
	MinPlanSteps            = 1
	MaxPlanSteps             = 10
	MinEstimatedTimeSeconds  = 0.0
	MaxEstimatedTimeSeconds  = 30.0
	DefaultEstimatedTime     = 10.0
)

// shortID produces compact unique tokens, similar in shape to a
// truncated uuid4 hex string, for default step and plan IDs.
func shortID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// PlanStep is a single node in a QueryPlan's dependency graph.
type PlanStep struct {
	StepID         string         `json:"step_id"`
	Action         ActionName     `json:"action"`
	Params         map[string]any `json:"params"`
	DependsOn      []string       `json:"depends_on"`
	Required       bool           `json:"required"`
	TimeoutSeconds float64        `json:"timeout_seconds"`
	Description    string         `json:"description"`
}

// NewPlanStep fills in defaults for a plan step: an absent step_id is
// generated, params/depends_on default to empty collections, a zero timeout
// becomes DefaultStepTimeout, and timeout is clamped into
// [MinStepTimeoutSeconds, MaxStepTimeoutSeconds]. required is taken as given.
func NewPlanStep(stepID string, action ActionName, params map[string]any, dependsOn []string, required bool, timeoutSeconds float64, description string) PlanStep {
	if stepID == "" {
		stepID = "s" + shortID()
	}
	if params == nil {
		params = map[string]any{}
	}
	if dependsOn == nil {
		dependsOn = []string{}
	}
	if timeoutSeconds == 0 {
		timeoutSeconds = DefaultStepTimeout
	}
	if timeoutSeconds < MinStepTimeoutSeconds {
		timeoutSeconds = MinStepTimeoutSeconds
	}
	if timeoutSeconds > MaxStepTimeoutSeconds {
		timeoutSeconds = MaxStepTimeoutSeconds
	}
	return PlanStep{
		StepID:         stepID,
		Action:         action,
		Params:         params,
		DependsOn:      dependsOn,
		Required:       required,
		TimeoutSeconds: timeoutSeconds,
		Description:    description,
	}
}

// QueryPlan is a complete, validated, acyclic execution plan for one query.
type QueryPlan struct {
	PlanID               string     `json:"plan_id"`
	Query                string     `json:"query"`
	QueryType            QueryType  `json:"query_type"`
	Reasoning            string     `json:"reasoning"`
	Steps                []PlanStep `json:"steps"`
	EstimatedTimeSeconds float64    `json:"estimated_time_seconds"`
	RequiresWebSearch    bool       `json:"requires_web_search"`
}

// NewQueryPlan validates and constructs a QueryPlan. It generates a plan_id
// when absent, clamps estimated_time_seconds, and enforces the step-count and
// dependency invariants: 1–10 steps, every depends_on referencing a known
// step_id, and no cycles (checked by running GetExecutionOrder on the
// assembled plan before returning it).
func NewQueryPlan(planID, query string, queryType QueryType, reasoning string, steps []PlanStep, estimatedTimeSeconds float64, requiresWebSearch bool) (*QueryPlan, error) {
	if planID == "" {
		planID = "plan-" + shortID()
	}
	if len(steps) < MinPlanSteps {
		return nil, newInvalidPlanError("plan must have at least %d step(s), got %d", MinPlanSteps, len(steps))
	}
	if len(steps) > MaxPlanSteps {
		return nil, newInvalidPlanError("plan must have at most %d steps, got %d", MaxPlanSteps, len(steps))
	}
	if estimatedTimeSeconds == 0 {
		estimatedTimeSeconds = DefaultEstimatedTime
	}
	if estimatedTimeSeconds < MinEstimatedTimeSeconds {
		estimatedTimeSeconds = MinEstimatedTimeSeconds
	}
	if estimatedTimeSeconds > MaxEstimatedTimeSeconds {
		estimatedTimeSeconds = MaxEstimatedTimeSeconds
	}

	knownIDs := make(map[string]struct{}, len(steps))
	for _, s := range steps {
		knownIDs[s.StepID] = struct{}{}
	}
	for _, s := range steps {
		for _, dep := range s.DependsOn {
			if _, ok := knownIDs[dep]; !ok {
				return nil, newInvalidPlanError("step %s depends on unknown step %s", s.StepID, dep)
			}
		}
	}

	plan := &QueryPlan{
		PlanID:               planID,
		Query:                query,
		QueryType:            queryType,
		Reasoning:            reasoning,
		Steps:                steps,
		EstimatedTimeSeconds: estimatedTimeSeconds,
		RequiresWebSearch:    requiresWebSearch,
	}
	if _, err := plan.GetExecutionOrder(); err != nil {
		return nil, err
	}
	return plan, nil
}

// GetExecutionOrder groups steps into phases: a Kahn-style topological sort
// where each phase is the maximal set of not-yet-scheduled steps whose
// dependencies are all satisfied. Phase membership order follows the
// original step declaration order (not map iteration order) so the result is
// deterministic across runs.
func (p *QueryPlan) GetExecutionOrder() ([][]string, error) {
	remaining := make(map[string][]string, len(p.Steps))
	for _, s := range p.Steps {
		remaining[s.StepID] = s.DependsOn
	}
	completed := make(map[string]struct{}, len(p.Steps))
	var phases [][]string

	for len(remaining) > 0 {
		var ready []string
		for _, s := range p.Steps {
			if _, done := completed[s.StepID]; done {
				continue
			}
			if _, stillPending := remaining[s.StepID]; !stillPending {
				continue
			}
			allMet := true
			for _, dep := range remaining[s.StepID] {
				if _, ok := completed[dep]; !ok {
					allMet = false
					break
				}
			}
			if allMet {
				ready = append(ready, s.StepID)
			}
		}
		if len(ready) == 0 {
			return nil, newInvalidPlanError("circular dependency detected among steps: %v", remainingKeys(remaining))
		}
		phases = append(phases, ready)
		for _, id := range ready {
			delete(remaining, id)
			completed[id] = struct{}{}
		}
	}
	return phases, nil
}

func remainingKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
