package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
	promptx "github.com/tanpawarit/rulebase-agent/agent/prompt"
	metricsx "github.com/tanpawarit/rulebase-agent/pkg/metrics"
)

const (
	fallbackParse         = "parse"
	fallbackMissingAnswer = "missing_answer"
)

// Catalog is the view of the tool registry the planner advertises to the model.
type Catalog interface {
	PlannerNames() []string
	Infos() []promptx.ToolInfo
}

type Option func(*Planner)

func WithMetrics(m *metricsx.Metrics) Option {
	return func(p *Planner) {
		p.metrics = m
	}
}

// Planner asks the model for exactly one ActionPlan per call.
type Planner struct {
	completer contractx.Completer
	toolNames string
	tools     []promptx.ToolInfo
	metrics   *metricsx.Metrics
}

var _ contractx.Planner = (*Planner)(nil)

func New(completer contractx.Completer, catalog Catalog, opts ...Option) (*Planner, error) {
	if completer == nil {
		return nil, errors.New("planner completer is required")
	}
	if catalog == nil {
		return nil, errors.New("tool catalog is required")
	}

	p := &Planner{
		completer: completer,
		toolNames: strings.Join(catalog.PlannerNames(), ", "),
		tools:     catalog.Infos(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// Plan never retries the completion. A malformed response degrades to
// FallbackPlan; a failed completion is returned as an error.
func (p *Planner) Plan(ctx context.Context, userQuery string, memoryContext string) (contractx.ActionPlan, error) {
	prompts, err := promptx.Planner(promptx.PlannerInput{
		ToolNames:     p.toolNames,
		Tools:         p.tools,
		UserQuery:     userQuery,
		MemoryContext: memoryContext,
	})
	if err != nil {
		return contractx.ActionPlan{}, fmt.Errorf("%w: %v", contractx.ErrValidation, err)
	}

	raw, err := p.completer.Complete(ctx, prompts.System, prompts.User)
	if err != nil {
		return contractx.ActionPlan{}, err
	}

	logger := zerolog.Ctx(ctx)
	plan, err := ParsePlan(raw)
	if err != nil {
		logger.Warn().Err(err).Str("raw", raw).Msg("planner response unusable, falling back to search")
		p.metrics.IncPlannerFallback(fallbackParse)
		plan = FallbackPlan(userQuery)
	}

	if ensureAnswer(&plan) {
		logger.Warn().Msg("final_answer plan without answer, using canned answer")
		p.metrics.IncPlannerFallback(fallbackMissingAnswer)
	}

	logger.Debug().
		Str("tool", plan.Tool).
		Interface("tool_input", plan.ToolInput).
		Bool("is_final", plan.IsFinal).
		Msg("plan selected")
	return plan, nil
}
