package planner

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
	promptx "github.com/tanpawarit/rulebase-agent/agent/prompt"
	metricsx "github.com/tanpawarit/rulebase-agent/pkg/metrics"
)

type fakeCompleter struct {
	response   string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	f.calls++
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeCatalog struct{}

func (fakeCatalog) PlannerNames() []string {
	return []string{"search", "summarize", "extract_clause", "final_answer"}
}

func (fakeCatalog) Infos() []promptx.ToolInfo {
	return []promptx.ToolInfo{{Name: "search", Description: "규정 검색"}}
}

func newTestPlanner(t *testing.T, completer contractx.Completer, opts ...Option) *Planner {
	t.Helper()
	p, err := New(completer, fakeCatalog{}, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func TestPlanNotJSONFallsBackToSearch(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := metricsx.MustNew(reg)
	completer := &fakeCompleter{response: "not json"}
	p := newTestPlanner(t, completer, WithMetrics(m))

	plan, err := p.Plan(context.Background(), "연차 사용 규정", "")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	want := contractx.ActionPlan{
		Tool:      "search",
		ToolInput: map[string]any{"query": "연차 사용 규정"},
		Reason:    FallbackReason,
		IsFinal:   false,
	}
	if !reflect.DeepEqual(plan, want) {
		t.Fatalf("unexpected fallback plan: %#v", plan)
	}
	if completer.calls != 1 {
		t.Fatalf("expected exactly one completion, got %d", completer.calls)
	}
	expected := `
# HELP rulebase_agent_planner_fallbacks_total Planner responses repaired locally, by kind.
# TYPE rulebase_agent_planner_fallbacks_total counter
rulebase_agent_planner_fallbacks_total{kind="parse"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "rulebase_agent_planner_fallbacks_total"); err != nil {
		t.Fatalf("unexpected fallback metrics: %v", err)
	}
}

func TestPlanPromptCarriesToolsQueryAndContext(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{response: `{"tool":"search","tool_input":{"query":"재택"},"reason":"r","is_final":false}`}
	p := newTestPlanner(t, completer)

	if _, err := p.Plan(context.Background(), "재택근무 규정", "사용자: 안녕\n에이전트: 네"); err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	for _, want := range []string{"search, summarize, extract_clause, final_answer", "재택근무 규정", "사용자: 안녕"} {
		if !strings.Contains(completer.lastUser, want) {
			t.Fatalf("prompt missing %q:\n%s", want, completer.lastUser)
		}
	}
	if strings.TrimSpace(completer.lastSystem) == "" {
		t.Fatalf("expected a system prompt")
	}
}

func TestPlanPropagatesCompletionError(t *testing.T) {
	t.Parallel()

	boom := errors.New("unreachable")
	p := newTestPlanner(t, &fakeCompleter{err: boom})

	if _, err := p.Plan(context.Background(), "q", ""); !errors.Is(err, boom) {
		t.Fatalf("expected completion error, got %v", err)
	}
}

func TestPlanFinalAnswerWithoutAnswerGetsCannedText(t *testing.T) {
	t.Parallel()

	cases := []string{
		`{"tool":"final_answer","tool_input":{},"reason":"done","is_final":true}`,
		`{"tool":"final_answer","tool_input":{"answer":"   "},"is_final":true}`,
		`{"tool":"final_answer","tool_input":{"answer":42}}`,
		`{"tool":"final_answer"}`,
	}
	for _, raw := range cases {
		p := newTestPlanner(t, &fakeCompleter{response: raw})
		plan, err := p.Plan(context.Background(), "q", "")
		if err != nil {
			t.Fatalf("Plan(%s) error = %v", raw, err)
		}
		if got := plan.ToolInput["answer"]; got != MissingAnswer {
			t.Fatalf("Plan(%s) answer = %#v", raw, got)
		}
	}
}

func TestPlanKeepsProvidedAnswer(t *testing.T) {
	t.Parallel()

	p := newTestPlanner(t, &fakeCompleter{response: `{"tool":"final_answer","tool_input":{"answer":"연차는 15일입니다."},"is_final":true}`})
	plan, err := p.Plan(context.Background(), "q", "")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if plan.ToolInput["answer"] != "연차는 15일입니다." || !plan.IsFinal {
		t.Fatalf("unexpected plan: %#v", plan)
	}
}

func TestParsePlanDefaultsMissingFields(t *testing.T) {
	t.Parallel()

	plan, err := ParsePlan(`{"reason":"only a reason"}`)
	if err != nil {
		t.Fatalf("ParsePlan() error = %v", err)
	}
	if plan.Tool != "search" || len(plan.ToolInput) != 0 || plan.ToolInput == nil || plan.IsFinal {
		t.Fatalf("unexpected defaults: %#v", plan)
	}
	if plan.Reason != "only a reason" {
		t.Fatalf("parsed reason dropped: %#v", plan)
	}
}

func TestParsePlanWrongTypesUseDefaults(t *testing.T) {
	t.Parallel()

	plan, err := ParsePlan(`{"tool":7,"tool_input":"x","reason":1,"is_final":"yes"}`)
	if err != nil {
		t.Fatalf("ParsePlan() error = %v", err)
	}
	want := contractx.ActionPlan{Tool: "search", ToolInput: map[string]any{}}
	if !reflect.DeepEqual(plan, want) {
		t.Fatalf("unexpected plan: %#v", plan)
	}
}

func TestParsePlanRejectsNonObjects(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"not json", "[1,2]", "null", `"search"`, "```json\n{}\n```"} {
		if _, err := ParsePlan(raw); !errors.Is(err, contractx.ErrPlannerResponse) {
			t.Fatalf("ParsePlan(%q) error = %v, want ErrPlannerResponse", raw, err)
		}
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, fakeCatalog{}); err == nil {
		t.Fatalf("expected error for nil completer")
	}
	if _, err := New(&fakeCompleter{}, nil); err == nil {
		t.Fatalf("expected error for nil catalog")
	}
}
