package contract

import "context"

// Completer is the language-model collaborator: one synchronous,
// single-shot completion returning raw text.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// Tool is a named capability the planner can select.
type Tool interface {
	Name() string
	Description() string
	Run(ctx context.Context, query string, input map[string]any) (Output, error)
}

type Planner interface {
	Plan(ctx context.Context, userQuery string, memoryContext string) (ActionPlan, error)
}

type ToolLookup interface {
	Get(name string) (Tool, bool)
}

// MemoryStore keeps the recent conversation window per session.
type MemoryStore interface {
	Context(ctx context.Context, sessionID string) (string, error)
	AddTurn(ctx context.Context, sessionID string, turn Turn) error
}

// Executor turns one plan into one step result. Tool failures are reported
// inside the StepResult, never as an error.
type Executor interface {
	Execute(ctx context.Context, plan ActionPlan, userQuery string) StepResult
}
