package orchestratornode

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
)

const (
	NoAnswer = "답변을 생성하지 못했습니다."

	postSummarizeReason = "search 결과를 바탕으로 최종 사용자 답변을 생성"
)

// Summarizer runs the summarize capability outside of planning. ok is false
// when no such capability exists.
type Summarizer interface {
	RunSummarize(ctx context.Context, userQuery string, texts []string) (out contractx.Output, ok bool, err error)
}

// FinalizeAnswer derives the final answer from the last step output. A run
// that ended on search records gets exactly one synthetic summarize step.
func FinalizeAnswer(
	ctx context.Context,
	in *RunState,
	summarizer Summarizer,
) (*RunState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: run state is nil", contractx.ErrValidation)
	}

	logger := zerolog.Ctx(ctx)
	var answer string

	switch in.LastResult.Kind {
	case contractx.OutputRecords:
		texts := in.LastResult.Contents()
		out, ok, err := summarizer.RunSummarize(ctx, in.Query, texts)
		if err != nil {
			return nil, err
		}
		if !ok {
			answer = in.LastResult.String()
			break
		}
		if strings.TrimSpace(out.String()) == "" {
			logger.Warn().Msg("summarize returned a blank answer")
			out = contractx.TextOutput(NoAnswer)
		}
		in.Steps = append(in.Steps, contractx.StepResult{
			Tool:      contractx.ToolPostSummarize,
			ToolInput: map[string]any{"texts": texts},
			Output:    out,
			Reason:    postSummarizeReason,
			IsFinal:   true,
		})
		answer = out.String()
		logger.Info().Int("texts", len(texts)).Msg("summarized remaining search records")
	case contractx.OutputNone:
		answer = NoAnswer
	default:
		answer = in.LastResult.String()
	}

	if strings.TrimSpace(answer) == "" {
		logger.Warn().Msg("final answer was blank")
		answer = NoAnswer
	}
	in.FinalAnswer = answer
	return in, nil
}

func BuildResponse(in *RunState) (contractx.RunResponse, error) {
	if in == nil {
		return contractx.RunResponse{}, fmt.Errorf("%w: run state is nil", contractx.ErrValidation)
	}

	steps := in.Steps
	if steps == nil {
		steps = []contractx.StepResult{}
	}
	return contractx.RunResponse{
		Query:       in.Query,
		Steps:       steps,
		FinalAnswer: in.FinalAnswer,
	}, nil
}
