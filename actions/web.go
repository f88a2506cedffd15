package actions

import (
	"context"
	"errors"
	"time"

	"github.com/junkim100/homebrew-trace-sub001/schemas"
	"github.com/junkim100/homebrew-trace-sub001/websearch"
)

// WebSearch searches the web for external information to augment local
// note-based answers.
type WebSearch struct {
	Provider websearch.Provider
}

func (a *WebSearch) Name() schemas.ActionName { return schemas.ActionWebSearch }
func (a *WebSearch) DefaultTimeout() float64   { return 15.0 }

func (a *WebSearch) Execute(ctx context.Context, stepID string, params map[string]any, ec Context) schemas.StepResult {
	start := time.Now()
	name := a.Name()

	query := paramString(params, "query", "")
	if query == "" {
		return failure(stepID, name, start, errors.New("query is required"))
	}
	maxResults := paramInt(params, "max_results", 5)

	if !a.Provider.Available() {
		return success(stepID, name, start, map[string]any{
			"web_results":   []map[string]any{},
			"web_citations": []map[string]any{},
			"query":         query,
			"message":       "Web search not available. Set TAVILY_API_KEY to enable.",
		})
	}

	results, citations, err := a.Provider.Search(ctx, query, maxResults)
	if err != nil {
		return failure(stepID, name, start, err)
	}

	resultMaps := make([]map[string]any, len(results))
	for i, r := range results {
		resultMaps[i] = map[string]any{
			"title":           r.Title,
			"url":             r.URL,
			"snippet":         r.Snippet,
			"relevance_score": r.RelevanceScore,
		}
	}
	citationMaps := make([]map[string]any, len(citations))
	for i, c := range citations {
		citationMaps[i] = map[string]any{
			"url":         c.URL,
			"title":       c.Title,
			"accessed_at": c.AccessedAt,
			"snippet":     c.Snippet,
		}
	}

	return success(stepID, name, start, map[string]any{
		"web_results":   resultMaps,
		"web_citations": citationMaps,
		"query":         query,
		"results_count": len(resultMaps),
	})
}
