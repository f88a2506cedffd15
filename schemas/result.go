package schemas

// StepResult is the outcome of executing a single plan step. Error is set
// iff Success is false; actions populate ExecutionTimeMs themselves so the
// executor's synthetic timeout/error paths can report a value even when the
// action never returned.
type StepResult struct {
	StepID         string     `json:"step_id"`
	Action         ActionName `json:"action"`
	Success        bool       `json:"success"`
	Result         any        `json:"result,omitempty"`
	Error          string     `json:"error,omitempty"`
	ExecutionTimeMs float64   `json:"execution_time_ms"`
}

// ResultMap is the result payload shape actions return when it is a mapping
// (as opposed to, say, a scalar). The executor only lifts typed accumulators
// out of results shaped this way.
type ResultMap = map[string]any

// ExecutionResult is the merged evidence bundle produced by one Executor.Execute call.
type ExecutionResult struct {
	PlanID               string                    `json:"plan_id"`
	Query                string                    `json:"query"`
	Success              bool                      `json:"success"`
	StepsCompleted       int                       `json:"steps_completed"`
	StepsFailed          int                       `json:"steps_failed"`
	TotalExecutionTimeMs float64                   `json:"total_execution_time_ms"`
	MergedNotes          []map[string]any          `json:"merged_notes"`
	MergedEntities       []map[string]any          `json:"merged_entities"`
	Aggregates           []map[string]any          `json:"aggregates"`
	WebResults           []map[string]any          `json:"web_results"`
	Patterns             []string                  `json:"patterns"`
	Comparison           *ComparisonResult         `json:"comparison,omitempty"`
	FallbackUsed         bool                      `json:"fallback_used"`
	FallbackReason       string                    `json:"fallback_reason,omitempty"`
	StepResults          map[string]StepResult     `json:"step_results"`
}

// ToMap renders the public (step_results-excluded) serialization used when
// an ExecutionResult is handed to the downstream answer-synthesis layer.
func (r ExecutionResult) ToMap() map[string]any {
	m := map[string]any{
		"plan_id":                 r.PlanID,
		"query":                   r.Query,
		"success":                 r.Success,
		"steps_completed":         r.StepsCompleted,
		"steps_failed":            r.StepsFailed,
		"total_execution_time_ms": r.TotalExecutionTimeMs,
		"merged_notes":            r.MergedNotes,
		"merged_entities":         r.MergedEntities,
		"aggregates":              r.Aggregates,
		"web_results":             r.WebResults,
		"patterns":                r.Patterns,
		"fallback_used":           r.FallbackUsed,
	}
	if r.Comparison != nil {
		m["comparison"] = r.Comparison.ToMap()
	}
	if r.FallbackReason != "" {
		m["fallback_reason"] = r.FallbackReason
	}
	return m
}

// WebResult is a single web search hit.
type WebResult struct {
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	Snippet        string  `json:"snippet"`
	RelevanceScore float64 `json:"relevance_score"`
}

// WebCitation records provenance for external content folded into an answer.
type WebCitation struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	AccessedAt string `json:"accessed_at"`
	Snippet    string `json:"snippet"`
}

// ComparisonResult is the output of the compare_periods action.
type ComparisonResult struct {
	PeriodADescription string         `json:"period_a_description"`
	PeriodBDescription string         `json:"period_b_description"`
	PeriodAData        map[string]any `json:"period_a_data"`
	PeriodBData        map[string]any `json:"period_b_data"`
	Differences        []string       `json:"differences"`
	Commonalities      []string       `json:"commonalities"`
}

// ToMap renders the comparison result as a plain map, and is also how the
// executor recognizes a step result as a comparison payload: presence of the
// "period_a_description" key.
func (c ComparisonResult) ToMap() map[string]any {
	return map[string]any{
		"period_a_description": c.PeriodADescription,
		"period_b_description": c.PeriodBDescription,
		"period_a_data":         c.PeriodAData,
		"period_b_data":         c.PeriodBData,
		"differences":           c.Differences,
		"commonalities":         c.Commonalities,
	}
}

// PatternResult is the output of the extract_patterns action.
type PatternResult struct {
	Patterns         []string `json:"patterns"`
	EvidenceNoteIDs  []string `json:"evidence_note_ids"`
	Confidence       float64  `json:"confidence"`
}

// ToMap renders the pattern result as a plain map.
func (p PatternResult) ToMap() map[string]any {
	return map[string]any{
		"patterns":           p.Patterns,
		"evidence_note_ids":  p.EvidenceNoteIDs,
		"confidence":         p.Confidence,
	}
}

// TemporalSequenceItem is one entry in a temporal_sequence result.
type TemporalSequenceItem struct {
	Timestamp string `json:"timestamp"`
	Activity  string `json:"activity"`
	Category  string `json:"category"`
	NoteID    string `json:"note_id"`
}

// ToMap renders the sequence item as a plain map.
func (t TemporalSequenceItem) ToMap() map[string]any {
	return map[string]any{
		"timestamp": t.Timestamp,
		"activity":  t.Activity,
		"category":  t.Category,
		"note_id":   t.NoteID,
	}
}

// ClassificationResult is the classifier's verdict on one query.
type ClassificationResult struct {
	IsComplex  bool      `json:"is_complex"`
	QueryType  QueryType `json:"query_type"`
	Confidence float64   `json:"confidence"`
	Signals    []string  `json:"signals"`
	Reasoning  string    `json:"reasoning"`
}
