// Package classifier implements the fast, deterministic complexity gate that
// decides whether a query needs agentic planning or can be served by the
// simple single-shot retrieval path.
package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/junkim100/homebrew-trace-sub001/schemas"
)

// ComplexityThreshold is the minimum per-type score for a query to be
// considered complex.
const ComplexityThreshold = 0.4

// signalSet pairs a query type with its compiled complexity-signal patterns.
// Declared as a slice, not a map, so iteration order is fixed: it decides
// both which type wins a score tie and the order complexity signals are
// recorded in.
type pattern struct {
	raw      string
	compiled *regexp.Regexp
}

type signalSet struct {
	queryType schemas.QueryType
	patterns  []pattern
}

func compileAll(raws []string) []pattern {
	out := make([]pattern, len(raws))
	for i, r := range raws {
		out[i] = pattern{raw: r, compiled: regexp.MustCompile("(?i)" + r)}
	}
	return out
}

// Classifier is a stateless, pure classifier: Classify(q) is a function of
// q alone, so it carries no mutable fields beyond its precompiled patterns.
type Classifier struct {
	simple  []pattern
	signals []signalSet
}

// New compiles the classifier's fixed pattern sets once.
func New() *Classifier {
	return &Classifier{
		simple: compileAll(simplePatterns),
		signals: []signalSet{
			{schemas.QueryTypeRelationship, compileAll(relationshipPatterns)},
			{schemas.QueryTypeComparison, compileAll(comparisonPatterns)},
			{schemas.QueryTypeMemoryRecall, compileAll(memoryRecallPatterns)},
			{schemas.QueryTypeCorrelation, compileAll(correlationPatterns)},
			{schemas.QueryTypeWebAugmented, compileAll(webAugmentedPatterns)},
			{schemas.QueryTypeMultiEntity, compileAll(multiEntityPatterns)},
		},
	}
}

// Classify runs the regex cascade against query. It never fails: every
// input, including the empty string, produces a well-formed
// ClassificationResult.
func (c *Classifier) Classify(query string) schemas.ClassificationResult {
	q := strings.TrimSpace(query)

	for _, p := range c.simple {
		if p.compiled.MatchString(q) {
			return schemas.ClassificationResult{
				IsComplex:  false,
				QueryType:  schemas.QueryTypeSimple,
				Confidence: 0.9,
				Signals:    []string{"simple_pattern_match"},
				Reasoning:  "matched simple pattern",
			}
		}
	}

	var detectedSignals []string
	type scored struct {
		queryType schemas.QueryType
		score     float64
	}
	var best *scored

	for _, set := range c.signals {
		matches := 0
		for _, p := range set.patterns {
			if p.compiled.MatchString(q) {
				matches++
				detectedSignals = append(detectedSignals, string(set.queryType)+":"+p.raw)
			}
		}
		if matches == 0 {
			continue
		}
		score := float64(matches) * 0.4
		if score > 1.0 {
			score = 1.0
		}
		if best == nil || score > best.score {
			best = &scored{queryType: set.queryType, score: score}
		}
	}

	if best == nil {
		return schemas.ClassificationResult{
			IsComplex:  false,
			QueryType:  schemas.QueryTypeSimple,
			Confidence: 0.7,
			Reasoning:  "no complexity signals matched",
		}
	}

	if len(detectedSignals) > 5 {
		detectedSignals = detectedSignals[:5]
	}

	isComplex := best.score >= ComplexityThreshold
	queryType := best.queryType
	if !isComplex {
		queryType = schemas.QueryTypeSimple
	}

	return schemas.ClassificationResult{
		IsComplex:  isComplex,
		QueryType:  queryType,
		Confidence: best.score,
		Signals:    detectedSignals,
		Reasoning:  fmt.Sprintf("%s scored %.2f against threshold %.2f", best.queryType, best.score, ComplexityThreshold),
	}
}
