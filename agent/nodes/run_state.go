package orchestratornode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
)

// RunState is threaded through every node of one agent run.
type RunState struct {
	Query     string
	SessionID string
	MaxSteps  int

	MemoryContext string
	Pending       contractx.ActionPlan
	Steps         []contractx.StepResult
	LastResult    contractx.Output
	Done          bool

	FinalAnswer string
}

type Limits struct {
	DefaultMaxSteps int
	MaxStepsLimit   int
}

// ValidateRequest rejects blank queries and out-of-range budgets. A zero
// budget means the default.
func ValidateRequest(in contractx.RunRequest, limits Limits) (*RunState, error) {
	if strings.TrimSpace(in.Query) == "" {
		return nil, fmt.Errorf("%w: query is empty", contractx.ErrValidation)
	}

	maxSteps := in.MaxSteps
	if maxSteps == 0 {
		maxSteps = limits.DefaultMaxSteps
	}
	if maxSteps <= 0 {
		return nil, fmt.Errorf("%w: max_steps must be positive, got %d", contractx.ErrValidation, in.MaxSteps)
	}
	if limits.MaxStepsLimit > 0 && maxSteps > limits.MaxStepsLimit {
		return nil, fmt.Errorf("%w: max_steps must be <= %d, got %d", contractx.ErrValidation, limits.MaxStepsLimit, maxSteps)
	}

	return &RunState{
		Query:     in.Query,
		SessionID: strings.TrimSpace(in.SessionID),
		MaxSteps:  maxSteps,
	}, nil
}
