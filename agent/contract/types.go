package contract

import (
	"encoding/json"
	"fmt"
	"maps"
)

const (
	ToolSearch        = "search"
	ToolSummarize     = "summarize"
	ToolExtractClause = "extract_clause"

	// ToolFinalAnswer is a pseudo-tool handled by the executor, never registered.
	ToolFinalAnswer = "final_answer"

	// ToolPostSummarize names the synthetic finalization step.
	ToolPostSummarize = "summarize (post-processing)"
)

type Role string

const (
	RolePlanner   Role = "planner"
	RoleSummarize Role = "summarize"
	RoleClause    Role = "extract_clause"
)

type ActionPlan struct {
	Tool      string         `json:"tool"`
	ToolInput map[string]any `json:"tool_input"`
	Reason    string         `json:"reason"`
	IsFinal   bool           `json:"is_final"`
}

func (p ActionPlan) IsFinalAnswer() bool {
	return p.Tool == ToolFinalAnswer
}

// Record is one corpus entry. Only title and content are interpreted;
// every other field is carried through untouched.
type Record map[string]any

func (r Record) Title() string {
	return r.field("title")
}

func (r Record) Content() string {
	return r.field("content")
}

func (r Record) field(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

type OutputKind int

const (
	OutputNone OutputKind = iota
	OutputText
	OutputRecords
	OutputError
)

func (k OutputKind) String() string {
	switch k {
	case OutputText:
		return "text"
	case OutputRecords:
		return "records"
	case OutputError:
		return "error"
	default:
		return "none"
	}
}

// Output is the tagged result of one step. Chaining and finalization
// dispatch on Kind, never on the shape of the payload.
type Output struct {
	Kind    OutputKind
	Text    string
	Records []Record
	Err     string
}

func TextOutput(text string) Output {
	return Output{Kind: OutputText, Text: text}
}

func RecordsOutput(records []Record) Output {
	if records == nil {
		records = []Record{}
	}
	return Output{Kind: OutputRecords, Records: records}
}

func ErrorOutput(message string) Output {
	return Output{Kind: OutputError, Err: message}
}

func (o Output) IsZero() bool {
	return o.Kind == OutputNone
}

// Contents returns the content field of every record, in order.
func (o Output) Contents() []string {
	texts := make([]string, 0, len(o.Records))
	for _, r := range o.Records {
		texts = append(texts, r.Content())
	}
	return texts
}

// String renders the output the way it is surfaced as a final answer.
func (o Output) String() string {
	switch o.Kind {
	case OutputText:
		return o.Text
	case OutputRecords, OutputError:
		raw, err := json.Marshal(o)
		if err != nil {
			return fmt.Sprint(o.Records)
		}
		return string(raw)
	default:
		return ""
	}
}

// MarshalJSON keeps the wire shape of the HTTP API: a string, a list of
// records, or {"error": "..."}.
func (o Output) MarshalJSON() ([]byte, error) {
	switch o.Kind {
	case OutputText:
		return json.Marshal(o.Text)
	case OutputRecords:
		records := o.Records
		if records == nil {
			records = []Record{}
		}
		return json.Marshal(records)
	case OutputError:
		return json.Marshal(map[string]string{"error": o.Err})
	default:
		return []byte("null"), nil
	}
}

func (o *Output) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*o = Output{}
	case string:
		*o = TextOutput(v)
	case []any:
		records := make([]Record, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: record must be an object", ErrValidation)
			}
			records = append(records, Record(m))
		}
		*o = RecordsOutput(records)
	case map[string]any:
		msg, _ := v["error"].(string)
		*o = ErrorOutput(msg)
	default:
		*o = TextOutput(fmt.Sprint(v))
	}
	return nil
}

type StepResult struct {
	Tool      string         `json:"tool"`
	ToolInput map[string]any `json:"tool_input"`
	Output    Output         `json:"output"`
	Reason    string         `json:"reason"`
	IsFinal   bool           `json:"is_final"`
}

type Turn struct {
	User  string `json:"user"`
	Agent string `json:"agent"`
}

type RunRequest struct {
	Query     string `json:"query"`
	MaxSteps  int    `json:"max_steps"`
	SessionID string `json:"session_id,omitempty"`
}

type RunResponse struct {
	Query       string       `json:"query"`
	Steps       []StepResult `json:"steps"`
	FinalAnswer string       `json:"final_answer"`
}

// CloneInput returns a shallow copy that is never nil.
func CloneInput(in map[string]any) map[string]any {
	if in == nil {
		return map[string]any{}
	}
	return maps.Clone(in)
}
