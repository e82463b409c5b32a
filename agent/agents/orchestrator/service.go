package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
	nodex "github.com/tanpawarit/rulebase-agent/agent/nodes"
	logx "github.com/tanpawarit/rulebase-agent/pkg/logger"
	metricsx "github.com/tanpawarit/rulebase-agent/pkg/metrics"
)

const (
	DefaultMaxSteps = 3
	DefaultMaxLimit = 10
)

type Config struct {
	DefaultMaxSteps int
	MaxStepsLimit   int
}

type Option func(*Orchestrator)

func WithMetrics(m *metricsx.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

type Orchestrator struct {
	planner    contractx.Planner
	executor   contractx.Executor
	summarizer nodex.Summarizer
	memory     contractx.MemoryStore
	metrics    *metricsx.Metrics

	limits nodex.Limits

	stepRunner compose.Runnable[*nodex.RunState, *nodex.RunState]
	runRunner  compose.Runnable[*nodex.RunState, contractx.RunResponse]

	now func() time.Time
}

func New(
	planner contractx.Planner,
	executor contractx.Executor,
	summarizer nodex.Summarizer,
	memory contractx.MemoryStore,
	cfg Config,
	opts ...Option,
) (*Orchestrator, error) {
	if planner == nil {
		return nil, errors.New("planner is required")
	}
	if executor == nil {
		return nil, errors.New("executor is required")
	}
	if summarizer == nil {
		return nil, errors.New("summarizer is required")
	}
	if memory == nil {
		return nil, errors.New("memory store is required")
	}

	limits := nodex.Limits{
		DefaultMaxSteps: cfg.DefaultMaxSteps,
		MaxStepsLimit:   cfg.MaxStepsLimit,
	}
	if limits.DefaultMaxSteps <= 0 {
		limits.DefaultMaxSteps = DefaultMaxSteps
	}
	if limits.MaxStepsLimit <= 0 {
		limits.MaxStepsLimit = DefaultMaxLimit
	}
	if limits.DefaultMaxSteps > limits.MaxStepsLimit {
		limits.MaxStepsLimit = limits.DefaultMaxSteps
	}

	o := &Orchestrator{
		planner:    planner,
		executor:   executor,
		summarizer: summarizer,
		memory:     memory,
		limits:     limits,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	ctx := context.Background()
	stepRunner, err := o.compileStepGraph(ctx)
	if err != nil {
		return nil, err
	}
	o.stepRunner = stepRunner

	runRunner, err := o.compileRunGraph(ctx)
	if err != nil {
		return nil, err
	}
	o.runRunner = runRunner

	return o, nil
}

// Run executes one agent request. The response always carries a non-empty
// final answer; any fault is returned as a single error with no partial steps.
func (o *Orchestrator) Run(ctx context.Context, req contractx.RunRequest) (contractx.RunResponse, error) {
	start := o.now()
	ctx, _ = logx.WithRequest(ctx, map[string]any{
		"session_id": req.SessionID,
		"max_steps":  req.MaxSteps,
	})
	logger := zerolog.Ctx(ctx)

	state, err := nodex.ValidateRequest(req, o.limits)
	if err != nil {
		o.metrics.ObserveRequest("invalid", o.now().Sub(start))
		logger.Warn().Err(err).Msg("rejected agent request")
		return contractx.RunResponse{}, err
	}

	resp, err := o.runRunner.Invoke(ctx, state)
	if err != nil {
		o.metrics.ObserveRequest("error", o.now().Sub(start))
		logger.Error().Err(err).Msg("agent run failed")
		return contractx.RunResponse{}, err
	}

	o.metrics.ObserveRequest("ok", o.now().Sub(start))
	logger.Info().
		Int("steps", len(resp.Steps)).
		Dur("elapsed", o.now().Sub(start)).
		Msg("agent run finished")
	return resp, nil
}
