package schemas

import "fmt"

// InvalidPlanError reports a plan rejected at acceptance time: a circular or
// unknown dependency, an out-of-bounds step count, or an out-of-range
// timeout/estimate. Callers of the planner never see this directly: the LLM
// path retries on it and falls back to the static plan after three failures,
// and the template path cannot produce one by construction.
type InvalidPlanError struct {
	Reason string
}

func (e *InvalidPlanError) Error() string {
	return fmt.Sprintf("invalid plan: %s", e.Reason)
}

// newInvalidPlanError builds an InvalidPlanError with a formatted reason.
func newInvalidPlanError(format string, args ...any) *InvalidPlanError {
	return &InvalidPlanError{Reason: fmt.Sprintf(format, args...)}
}
