package openaicompat

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ChatModelBuilder builds the eino chat model used by graph completers.
type ChatModelBuilder interface {
	NewChatModel(ctx context.Context) (model.BaseChatModel, error)
}

var _ ChatModelBuilder = (*Config)(nil)

// ReasoningExcluded lists models that must be asked not to return reasoning traces.
var ReasoningExcluded = map[string]bool{
	"x-ai/grok-4.1-fast": true,
}

// Config describes one OpenAI-compatible chat completions endpoint.
// A negative Temperature leaves the provider default in place. Headers are
// sent with every request by both client flavours; gateways use them for
// routing or attribution.
type Config struct {
	BaseURL            string
	APIKey             string
	Model              string
	MaxCompletionToken *int
	Temperature        float32
	Timeout            time.Duration
	Headers            map[string]string
}

func (c *Config) NewChatModel(ctx context.Context) (model.BaseChatModel, error) {
	modelName := strings.TrimSpace(c.Model)

	conf := &openaimodel.ChatModelConfig{
		BaseURL:   c.baseURL(),
		APIKey:    strings.TrimSpace(c.APIKey),
		Model:     modelName,
		MaxTokens: c.MaxCompletionToken,
		Timeout:   c.Timeout,
	}
	if c.Temperature >= 0 {
		temp := c.Temperature
		conf.Temperature = &temp
	}
	if hc := c.httpClient(); hc != nil {
		conf.HTTPClient = hc
	}

	if ReasoningExcluded[modelName] {
		conf.ExtraFields = map[string]any{
			"reasoning": map[string]any{
				"exclude": true,
			},
		}
	}

	m, err := openaimodel.NewChatModel(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("openaicompat: create chat model: %w", err)
	}

	return m, nil
}

// NewClient returns an openai-go client bound to the endpoint, or nil when
// no API key is configured.
func NewClient(cfg Config) *openaisdk.Client {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil
	}

	opts := []option.RequestOption{option.WithAPIKey(key)}
	if base := cfg.baseURL(); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	if hc := cfg.httpClient(); hc != nil {
		opts = append(opts, option.WithHTTPClient(hc))
	} else if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	client := openaisdk.NewClient(opts...)
	return &client
}

func (c *Config) baseURL() string {
	return strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
}

// httpClient is nil unless extra headers are configured.
func (c *Config) httpClient() *http.Client {
	headers := make(http.Header, len(c.Headers))
	for k, v := range c.Headers {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		headers.Set(k, v)
	}
	if len(headers) == 0 {
		return nil
	}
	return &http.Client{
		Timeout:   c.Timeout,
		Transport: &headerTransport{headers: headers, base: http.DefaultTransport},
	}
}

type headerTransport struct {
	headers http.Header
	base    http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, vs := range t.headers {
		req.Header[k] = append([]string(nil), vs...)
	}
	return t.base.RoundTrip(req)
}
