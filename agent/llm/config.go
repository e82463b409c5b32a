package llm

import (
	"fmt"
	"maps"
	"strings"
	"time"

	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
	openaicompatx "github.com/tanpawarit/rulebase-agent/pkg/openaicompat"
)

const (
	BackendEino = "eino"
	BackendSDK  = "sdk"
)

type Config struct {
	Backend            string        `envconfig:"BACKEND" default:"eino"`
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.openai.com/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" default:"gpt-5-mini"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" default:"-1"`
	Timeout            time.Duration `envconfig:"TIMEOUT" default:"60s"`

	// Headers is a comma separated list of name:value pairs sent with every request.
	Headers map[string]string `envconfig:"HEADERS"`

	PlannerModel         string  `envconfig:"PLANNER_MODEL" split_words:"true"`
	SummarizeModel       string  `envconfig:"SUMMARIZE_MODEL" split_words:"true"`
	ClauseModel          string  `envconfig:"CLAUSE_MODEL" split_words:"true"`
	PlannerTemperature   float32 `envconfig:"PLANNER_TEMPERATURE" split_words:"true" default:"-1"`
	SummarizeTemperature float32 `envconfig:"SUMMARIZE_TEMPERATURE" split_words:"true" default:"-1"`
	ClauseTemperature    float32 `envconfig:"CLAUSE_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: llm api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	switch c.backend() {
	case BackendEino, BackendSDK:
	default:
		return fmt.Errorf("%w: unsupported llm backend=%q", contractx.ErrValidation, c.Backend)
	}
	return nil
}

func (c Config) backend() string {
	b := strings.ToLower(strings.TrimSpace(c.Backend))
	if b == "" {
		return BackendEino
	}
	return b
}

// EndpointFor resolves the model and temperature for one role, falling back
// to the shared defaults when no override is set.
func (c Config) EndpointFor(role contractx.Role) openaicompatx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	override := func(m string, t float32) {
		if v := strings.TrimSpace(m); v != "" {
			modelName = v
		}
		if t >= 0 {
			temp = t
		}
	}

	switch role {
	case contractx.RolePlanner:
		override(c.PlannerModel, c.PlannerTemperature)
	case contractx.RoleSummarize:
		override(c.SummarizeModel, c.SummarizeTemperature)
	case contractx.RoleClause:
		override(c.ClauseModel, c.ClauseTemperature)
	}

	var maxCompletionToken *int
	if c.MaxCompletionToken > 0 {
		v := c.MaxCompletionToken
		maxCompletionToken = &v
	}
	return openaicompatx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		Headers:            maps.Clone(c.Headers),
	}
}
