package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
)

// ReadMemory snapshots the session context. It runs at loop entry and again
// after every non-final step.
func ReadMemory(
	ctx context.Context,
	in *RunState,
	memory contractx.MemoryStore,
) (*RunState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: run state is nil", contractx.ErrValidation)
	}

	memoryContext, err := memory.Context(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	in.MemoryContext = memoryContext
	return in, nil
}
