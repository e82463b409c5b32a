package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	openaisdk "github.com/openai/openai-go"
	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
	openaicompatx "github.com/tanpawarit/rulebase-agent/pkg/openaicompat"
)

var (
	_ contractx.Completer = (*GraphCompleter)(nil)
	_ contractx.Completer = (*SDKCompleter)(nil)
)

// GraphCompleter runs prompt -> chat model -> content as a compiled eino graph.
// Both prompts are passed as template variables so their braces are never
// interpreted by the template engine.
type GraphCompleter struct {
	runner compose.Runnable[map[string]any, string]
}

func NewGraphCompleter(ctx context.Context, chatModel einomodel.BaseChatModel, graphName string) (*GraphCompleter, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}

	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, string]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add completion prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add completion model node: %w", err)
	}
	if err := graph.AddLambdaNode("content",
		compose.InvokableLambda(func(ctx context.Context, msg *schema.Message) (string, error) {
			if msg == nil {
				return "", errors.New("empty model response")
			}
			return strings.TrimSpace(msg.Content), nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add completion content node: %w", err)
	}

	edges := [][2]string{
		{compose.START, "prompt"},
		{"prompt", "model"},
		{"model", "content"},
		{"content", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add completion edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(graphName))
	if err != nil {
		return nil, fmt.Errorf("compile completion graph: %w", err)
	}
	return &GraphCompleter{runner: runner}, nil
}

func (c *GraphCompleter) Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	out, err := c.runner.Invoke(ctx, map[string]any{
		"system": systemPrompt,
		"input":  userPrompt,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	return out, nil
}

// SDKCompleter calls the chat completions endpoint directly through openai-go.
type SDKCompleter struct {
	client      *openaisdk.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewSDKCompleter(cfg openaicompatx.Config) (*SDKCompleter, error) {
	client := openaicompatx.NewClient(cfg)
	if client == nil {
		return nil, fmt.Errorf("%w: llm api key is required", contractx.ErrValidation)
	}
	c := &SDKCompleter{
		client:      client,
		model:       strings.TrimSpace(cfg.Model),
		temperature: cfg.Temperature,
	}
	if cfg.MaxCompletionToken != nil {
		c.maxTokens = *cfg.MaxCompletionToken
	}
	return c, nil
}

func (c *SDKCompleter) Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(c.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(systemPrompt),
			openaisdk.UserMessage(userPrompt),
		},
	}
	if c.temperature >= 0 {
		params.Temperature = openaisdk.Float(float64(c.temperature))
	}
	if c.maxTokens > 0 {
		params.MaxCompletionTokens = openaisdk.Int(int64(c.maxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %v", contractx.ErrModelInvoke, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: chat completion returned no choices", contractx.ErrModelInvoke)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// NewCompleter builds the completer for one role using the configured backend.
func NewCompleter(ctx context.Context, cfg Config, role contractx.Role) (contractx.Completer, error) {
	endpoint := cfg.EndpointFor(role)

	switch cfg.backend() {
	case BackendSDK:
		return NewSDKCompleter(endpoint)
	case BackendEino:
		chatModel, err := endpoint.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create %s model: %v", contractx.ErrModelInvoke, role, err)
		}
		return NewGraphCompleter(ctx, chatModel, "completion."+string(role))
	default:
		return nil, fmt.Errorf("%w: unsupported llm backend=%q", contractx.ErrValidation, cfg.Backend)
	}
}
