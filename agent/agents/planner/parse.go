package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
)

const (
	FallbackReason = "JSON 파싱 실패로 기본 search를 수행"

	// MissingAnswer replaces a final_answer plan whose answer is absent or blank.
	MissingAnswer = "현재까지 수집한 정보만으로는 질문에 대한 구체적인 규정 설명을 만들지 못했습니다. " +
		"예를 들어 '연차 규정 알려줘', '재택근무 규정 알려줘', '보안 규정 알려줘'처럼 " +
		"원하시는 규정 종류나 상황을 조금 더 구체적으로 말해주시면, 해당 규정을 기준으로 자세히 답변해 줄 수 있습니다."
)

// FallbackPlan is the plan used whenever the model response is not a JSON object.
func FallbackPlan(userQuery string) contractx.ActionPlan {
	return contractx.ActionPlan{
		Tool:      contractx.ToolSearch,
		ToolInput: map[string]any{"query": userQuery},
		Reason:    FallbackReason,
		IsFinal:   false,
	}
}

// ParsePlan decodes a raw model response. Fields that are missing or of the
// wrong type get neutral defaults; only a response that is not a JSON object
// at all is an error.
func ParsePlan(raw string) (contractx.ActionPlan, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &fields); err != nil {
		return contractx.ActionPlan{}, fmt.Errorf("%w: %v", contractx.ErrPlannerResponse, err)
	}
	if fields == nil {
		return contractx.ActionPlan{}, fmt.Errorf("%w: response is null", contractx.ErrPlannerResponse)
	}

	plan := contractx.ActionPlan{
		Tool:      contractx.ToolSearch,
		ToolInput: map[string]any{},
	}
	if tool, ok := fields["tool"].(string); ok && strings.TrimSpace(tool) != "" {
		plan.Tool = strings.TrimSpace(tool)
	}
	if input, ok := fields["tool_input"].(map[string]any); ok {
		plan.ToolInput = input
	}
	if reason, ok := fields["reason"].(string); ok {
		plan.Reason = reason
	}
	if final, ok := fields["is_final"].(bool); ok {
		plan.IsFinal = final
	}
	return plan, nil
}

// ensureAnswer fills a canned answer into final_answer plans that lack one.
// It reports whether a substitution happened.
func ensureAnswer(plan *contractx.ActionPlan) bool {
	if !plan.IsFinalAnswer() {
		return false
	}
	if answer, ok := plan.ToolInput["answer"].(string); ok && strings.TrimSpace(answer) != "" {
		return false
	}
	plan.ToolInput = contractx.CloneInput(plan.ToolInput)
	plan.ToolInput["answer"] = MissingAnswer
	return true
}
