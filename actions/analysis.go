package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/junkim100/homebrew-trace-sub001/llm"
	"github.com/junkim100/homebrew-trace-sub001/runtime/agent/telemetry"
	"github.com/junkim100/homebrew-trace-sub001/schemas"
	"github.com/junkim100/homebrew-trace-sub001/store"
)

const analysisModel = "gpt-4o-mini"

// notesFromRefOrContext resolves the notes an analysis action operates on:
// a referenced step's "notes" field when notes_ref is given, otherwise every
// note the context has accumulated so far.
func notesFromRefOrContext(params map[string]any, ec Context) []map[string]any {
	ref := paramString(params, "notes_ref", "")
	if ref == "" {
		return ec.AllNotes()
	}
	refResult, ok := ec.StepResult(ref)
	if !ok || refResult.Result == nil {
		return nil
	}
	data, ok := refResult.Result.(map[string]any)
	if !ok {
		return nil
	}
	notes, _ := data["notes"].([]map[string]any)
	return notes
}

// ExtractPatterns uses an LLM to find behavioral patterns across a set of
// notes.
type ExtractPatterns struct {
	Client llm.Client
	Logger telemetry.Logger
}

func (a *ExtractPatterns) Name() schemas.ActionName { return schemas.ActionExtractPatterns }
func (a *ExtractPatterns) DefaultTimeout() float64   { return 8.0 }

func (a *ExtractPatterns) Execute(ctx context.Context, stepID string, params map[string]any, ec Context) schemas.StepResult {
	start := time.Now()
	name := a.Name()

	patternType := paramString(params, "pattern_type", "general")
	focusActivity := paramString(params, "focus_activity", "")
	notes := notesFromRefOrContext(params, ec)

	if len(notes) == 0 {
		return success(stepID, name, start, schemas.PatternResult{
			Patterns:        []string{"Insufficient data to extract patterns"},
			EvidenceNoteIDs: []string{},
			Confidence:      0.0,
		}.ToMap())
	}

	sample := notes
	if len(sample) > 20 {
		sample = sample[:20]
	}
	prompt := buildPatternPrompt(patternType, focusActivity, summarizeNotesForPrompt(sample))

	resp, err := a.Client.Complete(ctx, llm.Request{
		Model:       analysisModel,
		Temperature: 0.3,
		MaxTokens:   500,
		JSONMode:    true,
		Messages: []llm.Message{
			{Role: "system", Content: "You are an analyst extracting behavioral patterns from activity data. Output JSON."},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return failure(stepID, name, start, err)
	}

	var parsed struct {
		Patterns   []string `json:"patterns"`
		Confidence float64  `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(resp.Content), &parsed); err != nil {
		return failure(stepID, name, start, fmt.Errorf("parse pattern response: %w", err))
	}
	confidence := parsed.Confidence
	if confidence == 0 {
		confidence = 0.5
	}

	evidenceLimit := 10
	if evidenceLimit > len(notes) {
		evidenceLimit = len(notes)
	}
	evidenceIDs := make([]string, evidenceLimit)
	for i := 0; i < evidenceLimit; i++ {
		if id, ok := notes[i]["note_id"].(string); ok {
			evidenceIDs[i] = id
		}
	}

	return success(stepID, name, start, schemas.PatternResult{
		Patterns:        parsed.Patterns,
		EvidenceNoteIDs: evidenceIDs,
		Confidence:      confidence,
	}.ToMap())
}

func summarizeNotesForPrompt(notes []map[string]any) string {
	lines := make([]string, 0, len(notes))
	for _, n := range notes {
		ts, _ := n["start_ts"].(string)
		summary, _ := n["summary"].(string)
		if len(summary) > 200 {
			summary = summary[:200]
		}
		catStr := "uncategorized"
		if categories, ok := n["categories"].([]string); ok && len(categories) > 0 {
			limit := 3
			if limit > len(categories) {
				limit = len(categories)
			}
			catStr = strings.Join(categories[:limit], ", ")
		}
		lines = append(lines, fmt.Sprintf("- [%s] (%s) %s", ts, catStr, summary))
	}
	return strings.Join(lines, "\n")
}

func buildPatternPrompt(patternType, focusActivity, notesSummary string) string {
	focusStr := ""
	if focusActivity != "" {
		focusStr = fmt.Sprintf(" related to '%s'", focusActivity)
	}
	return fmt.Sprintf(`Analyze the following activity notes and extract behavioral patterns%s.

Pattern type to focus on: %s

Activity Notes:
%s

Identify 2-5 meaningful patterns. Output JSON:
{
  "patterns": ["Pattern 1 description", "Pattern 2 description", ...],
  "confidence": 0.0-1.0
}

Focus on:
- Recurring behaviors
- Time-based correlations
- Activity sequences
- Habit formations`, focusStr, patternType, notesSummary)
}

// ComparePeriods compares aggregate activity between two time periods,
// asking an LLM to summarize the differences and commonalities.
type ComparePeriods struct {
	Aggregates store.AggregateStore
	Client     llm.Client
	Logger     telemetry.Logger
}

func (a *ComparePeriods) Name() schemas.ActionName { return schemas.ActionComparePeriods }
func (a *ComparePeriods) DefaultTimeout() float64   { return 10.0 }

var comparisonKeyTypes = []string{"app", "topic", "category", "domain"}

func (a *ComparePeriods) Execute(ctx context.Context, stepID string, params map[string]any, ec Context) schemas.StepResult {
	start := time.Now()
	name := a.Name()

	if _, ok := params["period_a"]; !ok {
		return failure(stepID, name, start, errors.New("both period_a and period_b are required"))
	}
	if _, ok := params["period_b"]; !ok {
		return failure(stepID, name, start, errors.New("both period_a and period_b are required"))
	}
	periodA := paramTimeFilter(params, "period_a")
	periodB := paramTimeFilter(params, "period_b")
	focus := paramString(params, "focus", "general")

	periodAData := make(map[string]any, len(comparisonKeyTypes))
	periodBData := make(map[string]any, len(comparisonKeyTypes))
	for _, keyType := range comparisonKeyTypes {
		aResult, err := a.Aggregates.TopByKeyType(ctx, keyType, periodA, 5)
		if err != nil {
			return failure(stepID, name, start, err)
		}
		bResult, err := a.Aggregates.TopByKeyType(ctx, keyType, periodB, 5)
		if err != nil {
			return failure(stepID, name, start, err)
		}
		periodAData[keyType] = aggregateItemsToMinutes(aResult.Items)
		periodBData[keyType] = aggregateItemsToMinutes(bResult.Items)
	}

	differences, commonalities := a.analyzeComparison(ctx, periodA.Description, periodB.Description, periodAData, periodBData, focus)

	result := schemas.ComparisonResult{
		PeriodADescription: periodA.Description,
		PeriodBDescription: periodB.Description,
		PeriodAData:        periodAData,
		PeriodBData:        periodBData,
		Differences:        differences,
		Commonalities:      commonalities,
	}
	return success(stepID, name, start, result.ToMap())
}

func aggregateItemsToMinutes(items []store.AggregateItem) []map[string]any {
	out := make([]map[string]any, len(items))
	for i, it := range items {
		out[i] = map[string]any{"key": it.Key, "minutes": it.Value}
	}
	return out
}

func (a *ComparePeriods) analyzeComparison(ctx context.Context, periodADesc, periodBDesc string, periodAData, periodBData map[string]any, focus string) ([]string, []string) {
	aJSON, _ := json.MarshalIndent(periodAData, "", "  ")
	bJSON, _ := json.MarshalIndent(periodBData, "", "  ")
	prompt := fmt.Sprintf(`Compare these two time periods and identify key differences and commonalities.

Period A (%s):
%s

Period B (%s):
%s

Focus area: %s

Output JSON:
{
  "differences": ["Difference 1", "Difference 2", ...],
  "commonalities": ["Commonality 1", "Commonality 2", ...]
}

Be specific and mention actual data values where relevant.`, periodADesc, aJSON, periodBDesc, bJSON, focus)

	resp, err := a.Client.Complete(ctx, llm.Request{
		Model:       analysisModel,
		Temperature: 0.3,
		MaxTokens:   500,
		JSONMode:    true,
		Messages: []llm.Message{
			{Role: "system", Content: "You analyze activity data comparisons. Output JSON."},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		if a.Logger != nil {
			a.Logger.Warn(ctx, "LLM comparison analysis failed, using basic comparison", "error", err)
		}
		return basicComparison(periodAData, periodBData)
	}

	var parsed struct {
		Differences   []string `json:"differences"`
		Commonalities []string `json:"commonalities"`
	}
	if err := json.Unmarshal([]byte(resp.Content), &parsed); err != nil {
		if a.Logger != nil {
			a.Logger.Warn(ctx, "LLM comparison analysis response invalid, using basic comparison", "error", err)
		}
		return basicComparison(periodAData, periodBData)
	}
	return parsed.Differences, parsed.Commonalities
}

func basicComparison(periodAData, periodBData map[string]any) ([]string, []string) {
	var differences, commonalities []string
	for keyType, aRaw := range periodAData {
		aKeys := keySetOf(aRaw)
		bKeys := keySetOf(periodBData[keyType])

		var onlyA, onlyB, common []string
		for k := range aKeys {
			if bKeys[k] {
				common = append(common, k)
			} else {
				onlyA = append(onlyA, k)
			}
		}
		for k := range bKeys {
			if !aKeys[k] {
				onlyB = append(onlyB, k)
			}
		}

		if len(onlyA) > 0 {
			differences = append(differences, fmt.Sprintf("%s: %s only in period A", keyType, strings.Join(limitStrs(onlyA, 3), ", ")))
		}
		if len(onlyB) > 0 {
			differences = append(differences, fmt.Sprintf("%s: %s only in period B", keyType, strings.Join(limitStrs(onlyB, 3), ", ")))
		}
		if len(common) > 0 {
			commonalities = append(commonalities, fmt.Sprintf("%s: %s in both periods", keyType, strings.Join(limitStrs(common, 3), ", ")))
		}
	}
	return differences, commonalities
}

func keySetOf(raw any) map[string]bool {
	items, _ := raw.([]map[string]any)
	set := make(map[string]bool, len(items))
	for _, item := range items {
		if k, ok := item["key"].(string); ok {
			set[k] = true
		}
	}
	return set
}

func limitStrs(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// TemporalSequence finds the notes immediately before or after every note
// matching activity_filter.
type TemporalSequence struct{}

func (a *TemporalSequence) Name() schemas.ActionName { return schemas.ActionTemporalSequence }
func (a *TemporalSequence) DefaultTimeout() float64   { return 6.0 }

func (a *TemporalSequence) Execute(ctx context.Context, stepID string, params map[string]any, ec Context) schemas.StepResult {
	start := time.Now()
	name := a.Name()

	activityFilter := paramString(params, "activity_filter", "")
	sequenceType := paramString(params, "sequence_type", "after")
	notes := notesFromRefOrContext(params, ec)

	if len(notes) == 0 {
		return success(stepID, name, start, map[string]any{
			"sequence_items":   []map[string]any{},
			"activity_filter":  activityFilter,
			"sequence_type":    sequenceType,
		})
	}

	sorted := make([]map[string]any, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return noteTS(sorted[i]) < noteTS(sorted[j])
	})

	filterLower := strings.ToLower(activityFilter)
	var matchingIndices []int
	for i, n := range sorted {
		summary := strings.ToLower(noteField(n, "summary"))
		matched := strings.Contains(summary, filterLower)
		if !matched {
			if categories, ok := n["categories"].([]string); ok {
				for _, c := range categories {
					if strings.ToLower(c) == filterLower {
						matched = true
						break
					}
				}
			}
		}
		if matched {
			matchingIndices = append(matchingIndices, i)
		}
	}

	var items []map[string]any
	for _, idx := range matchingIndices {
		var neighbor map[string]any
		switch {
		case sequenceType == "after" && idx+1 < len(sorted):
			neighbor = sorted[idx+1]
		case sequenceType == "before" && idx > 0:
			neighbor = sorted[idx-1]
		default:
			continue
		}
		summary := noteField(neighbor, "summary")
		if len(summary) > 100 {
			summary = summary[:100]
		}
		category := ""
		if categories, ok := neighbor["categories"].([]string); ok {
			limit := 2
			if limit > len(categories) {
				limit = len(categories)
			}
			category = strings.Join(categories[:limit], ", ")
		}
		items = append(items, schemas.TemporalSequenceItem{
			Timestamp: noteField(neighbor, "start_ts"),
			Activity:  summary,
			Category:  category,
			NoteID:    noteField(neighbor, "note_id"),
		}.ToMap())
	}

	return success(stepID, name, start, map[string]any{
		"sequence_items":  items,
		"activity_filter": activityFilter,
		"sequence_type":   sequenceType,
		"matches_found":   len(matchingIndices),
	})
}

func noteTS(n map[string]any) string { return noteField(n, "start_ts") }

func noteField(n map[string]any, key string) string {
	s, _ := n[key].(string)
	return s
}

// MergeResults combines and deduplicates notes and entities from a set of
// referenced step results, plus everything the context has accumulated.
type MergeResults struct{}

func (a *MergeResults) Name() schemas.ActionName { return schemas.ActionMergeResults }
func (a *MergeResults) DefaultTimeout() float64   { return 2.0 }

func (a *MergeResults) Execute(ctx context.Context, stepID string, params map[string]any, ec Context) schemas.StepResult {
	start := time.Now()
	name := a.Name()

	refs := paramStringSlice(params, "result_refs")

	var mergedNotes []map[string]any
	var mergedEntities []map[string]any
	var mergedAggregates []map[string]any
	seenNotes := map[string]bool{}
	seenEntities := map[string]bool{}

	for _, ref := range refs {
		refResult, ok := ec.StepResult(ref)
		if !ok || refResult.Result == nil {
			continue
		}
		data, ok := refResult.Result.(map[string]any)
		if !ok {
			continue
		}
		if notes, ok := data["notes"].([]map[string]any); ok {
			for _, n := range notes {
				id, _ := n["note_id"].(string)
				if id != "" && !seenNotes[id] {
					seenNotes[id] = true
					mergedNotes = append(mergedNotes, n)
				}
			}
		}
		entitySources := append(append([]map[string]any{}, asEntitySlice(data["related_entities"])...), asEntitySlice(data["entities"])...)
		for _, e := range entitySources {
			id, _ := e["entity_id"].(string)
			if id != "" && !seenEntities[id] {
				seenEntities[id] = true
				mergedEntities = append(mergedEntities, e)
			}
		}
		if aggregates, ok := data["aggregates"].([]map[string]any); ok {
			mergedAggregates = append(mergedAggregates, aggregates...)
		}
	}

	for _, n := range ec.AllNotes() {
		id, _ := n["note_id"].(string)
		if id != "" && !seenNotes[id] {
			seenNotes[id] = true
			mergedNotes = append(mergedNotes, n)
		}
	}

	sort.SliceStable(mergedNotes, func(i, j int) bool {
		return noteTS(mergedNotes[i]) > noteTS(mergedNotes[j])
	})

	return success(stepID, name, start, map[string]any{
		"notes":          mergedNotes,
		"entities":       mergedEntities,
		"aggregates":     mergedAggregates,
		"total_notes":    len(mergedNotes),
		"total_entities": len(mergedEntities),
	})
}

func asEntitySlice(v any) []map[string]any {
	s, _ := v.([]map[string]any)
	return s
}
