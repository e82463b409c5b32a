package tool

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
	promptx "github.com/tanpawarit/rulebase-agent/agent/prompt"
)

// Registry maps tool names to tools. It is fixed at construction.
type Registry struct {
	tools map[string]contractx.Tool
	order []string
}

var _ contractx.ToolLookup = (*Registry)(nil)

func NewRegistry(tools ...contractx.Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]contractx.Tool, len(tools))}
	for _, t := range tools {
		if t == nil {
			continue
		}
		name := strings.TrimSpace(t.Name())
		if name == "" {
			return nil, fmt.Errorf("%w: tool name is empty", contractx.ErrValidation)
		}
		if name == contractx.ToolFinalAnswer {
			return nil, fmt.Errorf("%w: %s is reserved", contractx.ErrValidation, name)
		}
		if _, dup := r.tools[name]; dup {
			return nil, fmt.Errorf("%w: duplicate tool %s", contractx.ErrValidation, name)
		}
		r.tools[name] = t
		r.order = append(r.order, name)
	}
	return r, nil
}

func (r *Registry) Get(name string) (contractx.Tool, bool) {
	if r == nil {
		return nil, false
	}
	t, ok := r.tools[name]
	return t, ok
}

// Names lists registered tools in registration order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.order...)
}

// PlannerNames is Names plus the final_answer pseudo-tool.
func (r *Registry) PlannerNames() []string {
	return append(r.Names(), contractx.ToolFinalAnswer)
}

func (r *Registry) Infos() []promptx.ToolInfo {
	infos := make([]promptx.ToolInfo, 0, len(r.Names()))
	for _, name := range r.Names() {
		infos = append(infos, promptx.ToolInfo{Name: name, Description: r.tools[name].Description()})
	}
	return infos
}

type BuildConfig struct {
	DataPath string
	TopK     int
}

// Completers supplies one language model per generative tool.
type Completers struct {
	Summarize contractx.Completer
	Clause    contractx.Completer
}

// BuildDefault wires search, summarize and extract_clause. A corpus that
// cannot be loaded fails the build.
func BuildDefault(cfg BuildConfig, completers Completers) (*Registry, error) {
	search, err := NewSearchFromFile(cfg.DataPath, cfg.TopK)
	if err != nil {
		return nil, err
	}
	return NewRegistry(
		search,
		NewSummarize(completers.Summarize),
		NewClause(completers.Clause),
	)
}

// RunSummarize invokes the registered summarize tool directly, outside of
// planning. ok is false when no summarize tool is registered.
func (r *Registry) RunSummarize(ctx context.Context, userQuery string, texts []string) (out contractx.Output, ok bool, err error) {
	t, found := r.Get(contractx.ToolSummarize)
	if !found {
		return contractx.Output{}, false, nil
	}
	out, err = t.Run(ctx, userQuery, map[string]any{"texts": texts})
	return out, true, err
}
