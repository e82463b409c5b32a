package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
	metricsx "github.com/tanpawarit/rulebase-agent/pkg/metrics"
)

const (
	NoFinalAnswer = "별도의 최종 답변이 제공되지 않았습니다."

	// UnknownToolLabel is the metric label shared by every unregistered tool name.
	UnknownToolLabel = "unknown"
)

func UnknownToolMessage(name string) string {
	return "알 수 없는 tool: " + name
}

func ToolErrorMessage(name string, err error) string {
	return fmt.Sprintf("'%s' 실행 중 오류 발생: %v", name, err)
}

type Option func(*Executor)

func WithMetrics(m *metricsx.Metrics) Option {
	return func(e *Executor) {
		e.metrics = m
	}
}

// Executor dispatches one plan against the registry. It mutates nothing and
// never lets a tool failure escape.
type Executor struct {
	tools   contractx.ToolLookup
	metrics *metricsx.Metrics
}

var _ contractx.Executor = (*Executor)(nil)

func New(tools contractx.ToolLookup, opts ...Option) (*Executor, error) {
	if tools == nil {
		return nil, errors.New("tool registry is required")
	}
	e := &Executor{tools: tools}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

func (e *Executor) Execute(ctx context.Context, plan contractx.ActionPlan, userQuery string) contractx.StepResult {
	input := contractx.CloneInput(plan.ToolInput)
	step := contractx.StepResult{
		Tool:      plan.Tool,
		ToolInput: input,
		Reason:    plan.Reason,
		IsFinal:   plan.IsFinal,
	}
	logger := zerolog.Ctx(ctx).With().Str("tool", plan.Tool).Logger()

	if plan.IsFinalAnswer() {
		step.Output = contractx.TextOutput(finalAnswer(input))
		step.IsFinal = true
		e.metrics.IncStep(plan.Tool)
		return step
	}

	tool, ok := e.tools.Get(plan.Tool)
	if !ok {
		logger.Warn().Msg("plan names an unregistered tool")
		step.Output = contractx.TextOutput(UnknownToolMessage(plan.Tool))
		step.IsFinal = true
		e.metrics.IncStep(UnknownToolLabel)
		return step
	}

	out, err := runTool(ctx, tool, userQuery, input)
	if err != nil {
		logger.Error().Err(err).Msg("tool run failed")
		e.metrics.IncToolError(plan.Tool)
		step.Output = contractx.ErrorOutput(ToolErrorMessage(plan.Tool, err))
		step.IsFinal = false
	} else {
		step.Output = out
	}
	e.metrics.IncStep(plan.Tool)
	return step
}

func runTool(ctx context.Context, tool contractx.Tool, userQuery string, input map[string]any) (out contractx.Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = contractx.Output{}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return tool.Run(ctx, userQuery, input)
}

func finalAnswer(input map[string]any) string {
	v, ok := input["answer"]
	if !ok || v == nil {
		return NoFinalAnswer
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
