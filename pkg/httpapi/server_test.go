package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
	promptx "github.com/tanpawarit/rulebase-agent/agent/prompt"
	metricsx "github.com/tanpawarit/rulebase-agent/pkg/metrics"
)

type fakeRunner struct {
	resp    contractx.RunResponse
	err     error
	lastReq contractx.RunRequest
}

func (f *fakeRunner) Run(ctx context.Context, req contractx.RunRequest) (contractx.RunResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

type fakeCatalog struct{}

func (fakeCatalog) Infos() []promptx.ToolInfo {
	return []promptx.ToolInfo{
		{Name: "search", Description: "규정 검색"},
		{Name: "summarize", Description: "요약"},
	}
}

func newTestServer(t *testing.T, runner Runner, gatherer prometheus.Gatherer) *Server {
	t.Helper()
	s, err := New(runner, fakeCatalog{}, gatherer)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func do(t *testing.T, s *Server, method string, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestRunAgentReturnsResponse(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{resp: contractx.RunResponse{
		Query: "연차 사용 규정",
		Steps: []contractx.StepResult{{
			Tool:      "search",
			ToolInput: map[string]any{"query": "연차"},
			Output:    contractx.RecordsOutput([]contractx.Record{{"id": "R-001", "content": "연차는 15일"}}),
			Reason:    "검색",
		}},
		FinalAnswer: "연차는 15일입니다.",
	}}
	s := newTestServer(t, runner, prometheus.NewRegistry())

	rec := do(t, s, http.MethodPost, "/agent", `{"query":"연차 사용 규정","max_steps":2,"session_id":"s1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if runner.lastReq.Query != "연차 사용 규정" || runner.lastReq.MaxSteps != 2 || runner.lastReq.SessionID != "s1" {
		t.Fatalf("unexpected request: %#v", runner.lastReq)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["final_answer"] != "연차는 15일입니다." {
		t.Fatalf("unexpected final_answer: %#v", body["final_answer"])
	}
	steps, _ := body["steps"].([]any)
	if len(steps) != 1 {
		t.Fatalf("unexpected steps: %#v", body["steps"])
	}
	output, _ := steps[0].(map[string]any)["output"].([]any)
	if len(output) != 1 {
		t.Fatalf("records output should encode as a list: %#v", steps[0])
	}
}

func TestRunAgentMapsErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: query is empty", contractx.ErrValidation), http.StatusBadRequest},
		{errors.New("model unreachable"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		s := newTestServer(t, &fakeRunner{err: tc.err}, prometheus.NewRegistry())
		rec := do(t, s, http.MethodPost, "/agent", `{"query":"q"}`)
		if rec.Code != tc.status {
			t.Fatalf("error %v: status = %d, want %d", tc.err, rec.Code, tc.status)
		}

		var body errorBody
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Detail != tc.err.Error() {
			t.Fatalf("detail = %q, want %q", body.Detail, tc.err.Error())
		}
	}
}

func TestRunAgentRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	s := newTestServer(t, runner, prometheus.NewRegistry())

	rec := do(t, s, http.MethodPost, "/agent", `{"query": 12}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPing(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeRunner{}, prometheus.NewRegistry())
	rec := do(t, s, http.MethodGet, "/ping", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"status":"ok"}` {
		t.Fatalf("unexpected ping response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestToolsListsCatalog(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeRunner{}, prometheus.NewRegistry())
	rec := do(t, s, http.MethodGet, "/tools", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var tools []toolBody
	if err := json.Unmarshal(rec.Body.Bytes(), &tools); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(tools) != 2 || tools[0].Name != "search" {
		t.Fatalf("unexpected tools: %#v", tools)
	}
}

func TestMetricsEndpointServesRegistry(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := metricsx.MustNew(reg)
	m.IncStep("search")

	s := newTestServer(t, &fakeRunner{}, reg)
	rec := do(t, s, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `rulebase_agent_steps_total{tool="search"} 1`) {
		t.Fatalf("metrics body missing step counter:\n%s", rec.Body.String())
	}
}
