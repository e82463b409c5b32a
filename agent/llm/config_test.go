package llm

import (
	"errors"
	"testing"

	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
)

func TestEndpointForRoleOverrides(t *testing.T) {
	t.Parallel()

	cfg := Config{
		APIKey:               " key ",
		Model:                "gpt-5-mini",
		Temperature:          -1,
		MaxCompletionToken:   500,
		PlannerModel:         "planner-model",
		PlannerTemperature:   0.2,
		SummarizeTemperature: -1,
		ClauseModel:          "  ",
		ClauseTemperature:    0.7,
	}

	planner := cfg.EndpointFor(contractx.RolePlanner)
	if planner.Model != "planner-model" || planner.Temperature != 0.2 {
		t.Fatalf("unexpected planner endpoint: %+v", planner)
	}
	if planner.APIKey != "key" {
		t.Fatalf("api key not trimmed: %q", planner.APIKey)
	}
	if planner.MaxCompletionToken == nil || *planner.MaxCompletionToken != 500 {
		t.Fatalf("unexpected max tokens: %v", planner.MaxCompletionToken)
	}

	summarize := cfg.EndpointFor(contractx.RoleSummarize)
	if summarize.Model != "gpt-5-mini" || summarize.Temperature != -1 {
		t.Fatalf("unexpected summarize endpoint: %+v", summarize)
	}

	clause := cfg.EndpointFor(contractx.RoleClause)
	if clause.Model != "gpt-5-mini" || clause.Temperature != 0.7 {
		t.Fatalf("unexpected clause endpoint: %+v", clause)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	if err := (Config{APIKey: "k", Model: "m"}).Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if err := (Config{Model: "m"}).Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing key, got %v", err)
	}
	if err := (Config{APIKey: "k", Model: "m", Backend: "grpc"}).Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for backend, got %v", err)
	}
}

func TestEndpointForCopiesHeaders(t *testing.T) {
	t.Parallel()

	cfg := Config{APIKey: "k", Model: "m", Headers: map[string]string{"X-Title": "rules"}}
	endpoint := cfg.EndpointFor(contractx.RolePlanner)
	if endpoint.Headers["X-Title"] != "rules" {
		t.Fatalf("headers not carried: %v", endpoint.Headers)
	}

	endpoint.Headers["X-Title"] = "changed"
	if cfg.Headers["X-Title"] != "rules" {
		t.Fatal("endpoint headers alias the config map")
	}
}
