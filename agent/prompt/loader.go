package prompt

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

var (
	//go:embed template/planner_system.txt
	plannerSystemRaw string

	//go:embed template/planner.txt
	plannerRaw string

	//go:embed template/summarize_system.txt
	summarizeSystemRaw string

	//go:embed template/summarize.txt
	summarizeRaw string

	//go:embed template/clause_system.txt
	clauseSystemRaw string

	//go:embed template/clause.txt
	clauseRaw string
)

var (
	plannerTmpl   = template.Must(template.New("planner").Parse(strings.TrimSpace(plannerRaw)))
	summarizeTmpl = template.Must(template.New("summarize").Parse(strings.TrimSpace(summarizeRaw)))
	clauseTmpl    = template.Must(template.New("clause").Parse(strings.TrimSpace(clauseRaw)))
)

// Set pairs a system prompt with its rendered user prompt.
type Set struct {
	System string
	User   string
}

type ToolInfo struct {
	Name        string
	Description string
}

type PlannerInput struct {
	ToolNames     string
	Tools         []ToolInfo
	UserQuery     string
	MemoryContext string
}

type textsInput struct {
	UserQuery string
	Joined    string
}

func Planner(in PlannerInput) (Set, error) {
	user, err := render(plannerTmpl, in)
	if err != nil {
		return Set{}, err
	}
	return Set{System: strings.TrimSpace(plannerSystemRaw), User: user}, nil
}

func Summarize(userQuery string, texts []string) (Set, error) {
	user, err := render(summarizeTmpl, textsInput{UserQuery: userQuery, Joined: strings.Join(texts, "\n\n")})
	if err != nil {
		return Set{}, err
	}
	return Set{System: strings.TrimSpace(summarizeSystemRaw), User: user}, nil
}

func Clause(userQuery string, texts []string) (Set, error) {
	user, err := render(clauseTmpl, textsInput{UserQuery: userQuery, Joined: strings.Join(texts, "\n\n")})
	if err != nil {
		return Set{}, err
	}
	return Set{System: strings.TrimSpace(clauseSystemRaw), User: user}, nil
}

func render(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Name(), err)
	}
	return b.String(), nil
}
