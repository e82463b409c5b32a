package tool

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
	promptx "github.com/tanpawarit/rulebase-agent/agent/prompt"
)

// generative is a tool that hands the collected rule texts and the user
// question to the language model and returns its text.
type generative struct {
	name        string
	description string
	emptyText   string
	completer   contractx.Completer
	render      func(userQuery string, texts []string) (promptx.Set, error)
}

var _ contractx.Tool = (*generative)(nil)

func NewSummarize(completer contractx.Completer) contractx.Tool {
	return &generative{
		name:        contractx.ToolSummarize,
		description: "이미 검색된 규정 텍스트(texts)를 질문 중심으로 요약해 답변을 만든다.",
		emptyText:   "요약할 규정 내용이 없습니다. 먼저 관련 규정을 검색해 주세요.",
		completer:   completer,
		render:      promptx.Summarize,
	}
}

func NewClause(completer contractx.Completer) contractx.Tool {
	return &generative{
		name:        contractx.ToolExtractClause,
		description: "검색된 규정 텍스트(texts)에서 질문과 관련된 조항, 조건, 예외만 구조적으로 정리한다.",
		emptyText:   "정리할 규정 내용이 없습니다. 먼저 관련 규정을 검색해 주세요.",
		completer:   completer,
		render:      promptx.Clause,
	}
}

func (g *generative) Name() string        { return g.name }
func (g *generative) Description() string { return g.description }

// Run reads "texts". Without any text there is nothing to send to the model
// and a short explanation is returned instead.
func (g *generative) Run(ctx context.Context, query string, input map[string]any) (contractx.Output, error) {
	texts, err := textsArg(input)
	if err != nil {
		return contractx.Output{}, err
	}
	if len(texts) == 0 {
		return contractx.TextOutput(g.emptyText), nil
	}
	if g.completer == nil {
		return contractx.Output{}, fmt.Errorf("%w: %s has no language model", contractx.ErrModelInvoke, g.name)
	}

	set, err := g.render(query, texts)
	if err != nil {
		return contractx.Output{}, err
	}
	text, err := g.completer.Complete(ctx, set.System, set.User)
	if err != nil {
		return contractx.Output{}, err
	}
	return contractx.TextOutput(strings.TrimSpace(text)), nil
}
