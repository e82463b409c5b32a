package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
)

func PlanStep(
	ctx context.Context,
	in *RunState,
	planner contractx.Planner,
) (*RunState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: run state is nil", contractx.ErrValidation)
	}

	plan, err := planner.Plan(ctx, in.Query, in.MemoryContext)
	if err != nil {
		return nil, err
	}
	if plan.Tool == "" {
		plan.Tool = contractx.ToolSearch
	}
	plan.ToolInput = contractx.CloneInput(plan.ToolInput)

	in.Pending = plan
	return in, nil
}
