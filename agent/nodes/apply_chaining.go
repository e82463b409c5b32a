package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
)

func ApplyChaining(ctx context.Context, in *RunState) (*RunState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: run state is nil", contractx.ErrValidation)
	}

	if chained, ok := chainTexts(in.Pending, in.LastResult); ok {
		in.Pending = chained
		zerolog.Ctx(ctx).Debug().
			Str("tool", chained.Tool).
			Int("texts", len(in.LastResult.Records)).
			Msg("chained previous search records into plan")
	}
	return in, nil
}

// chainTexts injects the contents of the previous search records as texts
// for summarize and extract_clause. An explicit texts key always wins.
func chainTexts(plan contractx.ActionPlan, last contractx.Output) (contractx.ActionPlan, bool) {
	if last.Kind != contractx.OutputRecords {
		return plan, false
	}
	if plan.Tool != contractx.ToolSummarize && plan.Tool != contractx.ToolExtractClause {
		return plan, false
	}
	if _, exists := plan.ToolInput["texts"]; exists {
		return plan, false
	}

	plan.ToolInput = contractx.CloneInput(plan.ToolInput)
	plan.ToolInput["texts"] = last.Contents()
	return plan, true
}
