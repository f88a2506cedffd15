package actions

import (
	"time"

	"github.com/junkim100/homebrew-trace-sub001/schemas"
)

func paramString(params map[string]any, key, def string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

func paramInt(params map[string]any, key string, def int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

func paramFloat(params map[string]any, key string, def float64) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

func paramStringSlice(params map[string]any, key string) []string {
	v, ok := params[key]
	if !ok {
		return nil
	}
	switch raw := v.(type) {
	case []string:
		return raw
	case []any:
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// paramTimeFilter parses the "time_filter" param, which is either absent,
// a schemas.TimeFilter (when actions are called in-process by tests), a raw
// description string (e.g. "January", as the planner's few-shot examples
// teach the LLM to emit for period_a/period_b), or the {"description":...,
// "start":..., "end":...} map shape the planner/LLM also produces.
// Unparseable or absent filters are treated as zero-value (no constraint)
// rather than an error, since a malformed filter should narrow a search
// less, not fail it outright.
func paramTimeFilter(params map[string]any, key string) schemas.TimeFilter {
	v, ok := params[key]
	if !ok {
		return schemas.TimeFilter{}
	}
	switch raw := v.(type) {
	case schemas.TimeFilter:
		return raw
	case string:
		return schemas.TimeFilter{Description: raw}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return schemas.TimeFilter{}
	}
	var tf schemas.TimeFilter
	if desc, ok := m["description"].(string); ok {
		tf.Description = desc
	}
	if raw, ok := m["start"].(string); ok {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			tf.Start = &t
		}
	}
	if raw, ok := m["end"].(string); ok {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			tf.End = &t
		}
	}
	return tf
}

func paramEdgeTypes(params map[string]any, key string) []schemas.EdgeType {
	raw := paramStringSlice(params, key)
	out := make([]schemas.EdgeType, len(raw))
	for i, s := range raw {
		out[i] = schemas.EdgeType(s)
	}
	return out
}
