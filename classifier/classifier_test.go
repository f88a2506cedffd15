package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junkim100/homebrew-trace-sub001/schemas"
)

func TestClassifySimplePatternsAreNotComplex(t *testing.T) {
	t.Parallel()

	c := New()
	result := c.Classify("What did I do today?")

	assert.False(t, result.IsComplex)
	assert.Equal(t, schemas.QueryTypeSimple, result.QueryType)
	assert.Equal(t, []string{"simple_pattern_match"}, result.Signals)
}

func TestClassifyComparisonSignalsAboveThreshold(t *testing.T) {
	t.Parallel()

	c := New()
	result := c.Classify("Compare my focus this month versus last month")

	require.True(t, result.IsComplex)
	assert.Equal(t, schemas.QueryTypeComparison, result.QueryType)
	assert.GreaterOrEqual(t, result.Confidence, ComplexityThreshold)
}

func TestClassifyJanuaryVsPatternSupplementedFromOriginalSource(t *testing.T) {
	t.Parallel()

	c := New()
	result := c.Classify("how did january vs this month look")

	require.True(t, result.IsComplex)
	assert.Equal(t, schemas.QueryTypeComparison, result.QueryType)
}

func TestClassifyHoweverDoesNotTriggerComparisonSignal(t *testing.T) {
	t.Parallel()

	c := New()
	result := c.Classify("however my habits changed a little this week")

	for _, s := range result.Signals {
		assert.NotContains(t, s, "comparison:")
	}
}

func TestClassifyPopulatesReasoning(t *testing.T) {
	t.Parallel()

	c := New()

	simple := c.Classify("What did I do today?")
	assert.NotEmpty(t, simple.Reasoning)

	comparison := c.Classify("Compare my focus this month versus last month")
	assert.NotEmpty(t, comparison.Reasoning)

	unmatched := c.Classify("asdkjasldkj random gibberish")
	assert.NotEmpty(t, unmatched.Reasoning)
}

func TestClassifyUnmatchedQueryDefaultsToSimple(t *testing.T) {
	t.Parallel()

	c := New()
	result := c.Classify("asdkjasldkj random gibberish")

	assert.False(t, result.IsComplex)
	assert.Equal(t, schemas.QueryTypeSimple, result.QueryType)
	assert.Empty(t, result.Signals)
}

func TestClassifyNeverPanicsOnEmptyInput(t *testing.T) {
	t.Parallel()

	c := New()
	assert.NotPanics(t, func() {
		result := c.Classify("")
		assert.Equal(t, schemas.QueryTypeSimple, result.QueryType)
	})
}

func TestClassifySignalsCappedAtFive(t *testing.T) {
	t.Parallel()

	c := New()
	result := c.Classify("pattern usually tend to after do i before do i typically is there a pattern how often")

	assert.LessOrEqual(t, len(result.Signals), 5)
}
