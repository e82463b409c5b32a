package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
)

// ExecuteStep runs the pending plan, records the step and decides whether
// the loop terminates.
func ExecuteStep(
	ctx context.Context,
	in *RunState,
	executor contractx.Executor,
) (*RunState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: run state is nil", contractx.ErrValidation)
	}

	step := executor.Execute(ctx, in.Pending, in.Query)
	in.Steps = append(in.Steps, step)
	in.LastResult = step.Output
	in.Pending = contractx.ActionPlan{}
	in.Done = step.IsFinal || step.Tool == contractx.ToolFinalAnswer

	zerolog.Ctx(ctx).Info().
		Int("step", len(in.Steps)).
		Str("tool", step.Tool).
		Str("output_kind", step.Output.Kind.String()).
		Bool("is_final", step.IsFinal).
		Msg("step executed")
	return in, nil
}
