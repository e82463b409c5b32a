package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
	nodex "github.com/tanpawarit/rulebase-agent/agent/nodes"
)

// compileStepGraph builds one loop iteration: plan, chain, execute.
func (o *Orchestrator) compileStepGraph(
	ctx context.Context,
) (compose.Runnable[*nodex.RunState, *nodex.RunState], error) {
	graph := compose.NewGraph[*nodex.RunState, *nodex.RunState]()

	if err := graph.AddLambdaNode("plan_step",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.RunState) (*nodex.RunState, error) {
			return nodex.PlanStep(ctx, in, o.planner)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node plan_step: %w", err)
	}

	if err := graph.AddLambdaNode("apply_chaining",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.RunState) (*nodex.RunState, error) {
			return nodex.ApplyChaining(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node apply_chaining: %w", err)
	}

	if err := graph.AddLambdaNode("execute_step",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.RunState) (*nodex.RunState, error) {
			return nodex.ExecuteStep(ctx, in, o.executor)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute_step: %w", err)
	}

	if err := addChain(graph, compose.START, "plan_step", "apply_chaining", "execute_step", compose.END); err != nil {
		return nil, err
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.step"))
	if err != nil {
		return nil, fmt.Errorf("compile step graph: %w", err)
	}
	return runner, nil
}

// compileRunGraph builds the full request: read memory, loop, finalize,
// write memory.
func (o *Orchestrator) compileRunGraph(
	ctx context.Context,
) (compose.Runnable[*nodex.RunState, contractx.RunResponse], error) {
	graph := compose.NewGraph[*nodex.RunState, contractx.RunResponse]()

	if err := graph.AddLambdaNode("read_memory",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.RunState) (*nodex.RunState, error) {
			return nodex.ReadMemory(ctx, in, o.memory)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node read_memory: %w", err)
	}

	if err := graph.AddLambdaNode("run_steps",
		compose.InvokableLambda(o.runSteps),
	); err != nil {
		return nil, fmt.Errorf("add node run_steps: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_answer",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.RunState) (*nodex.RunState, error) {
			return nodex.FinalizeAnswer(ctx, in, o.summarizer)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_answer: %w", err)
	}

	if err := graph.AddLambdaNode("write_memory",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.RunState) (*nodex.RunState, error) {
			return nodex.WriteMemory(ctx, in, o.memory)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node write_memory: %w", err)
	}

	if err := graph.AddLambdaNode("build_response",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.RunState) (contractx.RunResponse, error) {
			return nodex.BuildResponse(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node build_response: %w", err)
	}

	if err := addChain(graph,
		compose.START, "read_memory", "run_steps", "finalize_answer", "write_memory", "build_response", compose.END,
	); err != nil {
		return nil, err
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.run_agent"))
	if err != nil {
		return nil, fmt.Errorf("compile run graph: %w", err)
	}
	return runner, nil
}

// runSteps drives the step graph at most MaxSteps times. Budget exhaustion
// is not an error.
func (o *Orchestrator) runSteps(ctx context.Context, in *nodex.RunState) (*nodex.RunState, error) {
	st := in
	for i := 0; i < st.MaxSteps; i++ {
		next, err := o.stepRunner.Invoke(ctx, st)
		if err != nil {
			return nil, err
		}
		st = next
		if st.Done {
			return st, nil
		}

		if st, err = nodex.ReadMemory(ctx, st, o.memory); err != nil {
			return nil, err
		}
	}

	zerolog.Ctx(ctx).Info().Int("budget", st.MaxSteps).Msg("step budget exhausted")
	return st, nil
}

func addChain[I, O any](graph *compose.Graph[I, O], nodes ...string) error {
	for i := 0; i+1 < len(nodes); i++ {
		if err := graph.AddEdge(nodes[i], nodes[i+1]); err != nil {
			return fmt.Errorf("add edge %s->%s: %w", nodes[i], nodes[i+1], err)
		}
	}
	return nil
}
