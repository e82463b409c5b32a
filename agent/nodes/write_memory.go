package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
)

func WriteMemory(
	ctx context.Context,
	in *RunState,
	memory contractx.MemoryStore,
) (*RunState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: run state is nil", contractx.ErrValidation)
	}

	turn := contractx.Turn{User: in.Query, Agent: in.FinalAnswer}
	if err := memory.AddTurn(ctx, in.SessionID, turn); err != nil {
		return nil, err
	}
	return in, nil
}
