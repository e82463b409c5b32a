package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
)

const DefaultTopK = 3

// Search matches the user question against the rules corpus. The corpus is
// read once and never mutated afterwards.
type Search struct {
	records     []contractx.Record
	defaultTopK int
}

var _ contractx.Tool = (*Search)(nil)

// LoadCorpus reads a JSON array of rule objects. A missing file or any other
// top-level shape is an ErrCorpusLoad.
func LoadCorpus(path string) ([]contractx.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: rules data file not found: %s", contractx.ErrCorpusLoad, path)
		}
		return nil, fmt.Errorf("%w: read %s: %v", contractx.ErrCorpusLoad, path, err)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: rules data must be a list of objects: %v", contractx.ErrCorpusLoad, err)
	}
	if items == nil {
		return nil, fmt.Errorf("%w: rules data must be a list of objects", contractx.ErrCorpusLoad)
	}

	records := make([]contractx.Record, 0, len(items))
	for i, item := range items {
		var rec map[string]any
		if err := json.Unmarshal(item, &rec); err != nil || rec == nil {
			return nil, fmt.Errorf("%w: rule #%d is not an object", contractx.ErrCorpusLoad, i)
		}
		records = append(records, contractx.Record(rec))
	}
	return records, nil
}

func NewSearch(records []contractx.Record, defaultTopK int) *Search {
	if defaultTopK <= 0 {
		defaultTopK = DefaultTopK
	}
	return &Search{records: records, defaultTopK: defaultTopK}
}

func NewSearchFromFile(path string, defaultTopK int) (*Search, error) {
	records, err := LoadCorpus(path)
	if err != nil {
		return nil, err
	}
	return NewSearch(records, defaultTopK), nil
}

func (s *Search) Name() string { return contractx.ToolSearch }

func (s *Search) Description() string {
	return "규정 데이터에서 질문과 관련된 조항을 키워드로 검색한다. tool_input: query(검색어), top_k(개수)"
}

// Run accepts "query" (falls back to the user question) and "top_k".
func (s *Search) Run(ctx context.Context, query string, input map[string]any) (contractx.Output, error) {
	q, _ := stringArg(input, "query")
	if q == "" {
		q = query
	}

	topK, err := intArg(input, "top_k", s.defaultTopK)
	if err != nil {
		return contractx.Output{}, err
	}

	if q == "" {
		return contractx.RecordsOutput(nil), nil
	}
	return contractx.RecordsOutput(s.search(q, topK)), nil
}

type scoredRecord struct {
	score  int
	record contractx.Record
}

// search scores every record with queryScore, drops zero scores and keeps
// the topK highest, ties in corpus order.
func (s *Search) search(query string, topK int) []contractx.Record {
	score := queryScore(query)

	scored := make([]scoredRecord, 0, len(s.records))
	for _, rec := range s.records {
		if score > 0 {
			scored = append(scored, scoredRecord{score: score, record: rec})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if topK < 0 {
		topK = 0
	}
	if topK > len(scored) {
		topK = len(scored)
	}

	out := make([]contractx.Record, 0, topK)
	for _, sr := range scored[:topK] {
		out = append(out, sr.record)
	}
	return out
}

// queryScore sums, for each whitespace token of the lowercased query, how
// often that token occurs in the lowercased query. The record text does not
// take part, so every record shares the same score.
func queryScore(query string) int {
	lowered := strings.ToLower(query)
	score := 0
	for _, token := range strings.Fields(lowered) {
		score += strings.Count(lowered, token)
	}
	return score
}
