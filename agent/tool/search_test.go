package tool

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
)

func loadTestSearch(t *testing.T, topK int) *Search {
	t.Helper()
	s, err := NewSearchFromFile("testdata/rules.json", topK)
	if err != nil {
		t.Fatalf("NewSearchFromFile() error = %v", err)
	}
	return s
}

func TestSearchReturnsRecordContainingKeyword(t *testing.T) {
	t.Parallel()

	s := loadTestSearch(t, 0)
	out, err := s.Run(context.Background(), "연차 사용 규정", map[string]any{"query": "연차 사용 규정"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.Kind != contractx.OutputRecords {
		t.Fatalf("unexpected kind: %s", out.Kind)
	}
	if len(out.Records) != DefaultTopK {
		t.Fatalf("expected %d records, got %d", DefaultTopK, len(out.Records))
	}
	if out.Records[0].Content() == "" || out.Records[0]["id"] != "R-001" {
		t.Fatalf("unexpected first record: %#v", out.Records[0])
	}
}

func TestSearchKeepsCorpusOrderOnEqualScores(t *testing.T) {
	t.Parallel()

	s := loadTestSearch(t, 10)
	out, err := s.Run(context.Background(), "출장", nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := []string{"R-001", "R-002", "R-003", "R-004"}
	if len(out.Records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(out.Records))
	}
	for i, id := range want {
		if out.Records[i]["id"] != id {
			t.Fatalf("records[%d] = %v, want %s", i, out.Records[i]["id"], id)
		}
	}
}

func TestSearchTopKFromInput(t *testing.T) {
	t.Parallel()

	s := loadTestSearch(t, 3)
	cases := []struct {
		name  string
		topK  any
		count int
	}{
		{name: "float", topK: float64(1), count: 1},
		{name: "string", topK: "2", count: 2},
		{name: "zero", topK: 0, count: 0},
		{name: "negative", topK: -2, count: 0},
		{name: "beyond corpus", topK: 50, count: 4},
	}
	for _, tc := range cases {
		out, err := s.Run(context.Background(), "규정", map[string]any{"top_k": tc.topK})
		if err != nil {
			t.Fatalf("%s: Run() error = %v", tc.name, err)
		}
		if len(out.Records) != tc.count {
			t.Fatalf("%s: expected %d records, got %d", tc.name, tc.count, len(out.Records))
		}
	}
}

func TestSearchInvalidTopK(t *testing.T) {
	t.Parallel()

	s := loadTestSearch(t, 3)
	_, err := s.Run(context.Background(), "규정", map[string]any{"top_k": "many"})
	if !errors.Is(err, contractx.ErrToolInput) {
		t.Fatalf("expected ErrToolInput, got %v", err)
	}
}

func TestSearchEmptyQueryReturnsEmptyList(t *testing.T) {
	t.Parallel()

	s := loadTestSearch(t, 3)
	out, err := s.Run(context.Background(), "", map[string]any{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.Kind != contractx.OutputRecords || len(out.Records) != 0 {
		t.Fatalf("expected empty record list, got %#v", out)
	}

	out, err = s.Run(context.Background(), "   ", nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(out.Records) != 0 {
		t.Fatalf("whitespace query must score zero, got %d records", len(out.Records))
	}
}

func TestQueryScore(t *testing.T) {
	t.Parallel()

	cases := []struct {
		query string
		want  int
	}{
		{query: "연차", want: 1},
		{query: "연차 규정", want: 2},
		{query: "a a", want: 4},
		{query: "ab a", want: 3},
		{query: "Leave LEAVE", want: 4},
		{query: "", want: 0},
	}
	for _, tc := range cases {
		if got := queryScore(tc.query); got != tc.want {
			t.Fatalf("queryScore(%q) = %d, want %d", tc.query, got, tc.want)
		}
	}
}

func TestLoadCorpusRejectsNonList(t *testing.T) {
	t.Parallel()

	_, err := LoadCorpus("testdata/object.json")
	if !errors.Is(err, contractx.ErrCorpusLoad) {
		t.Fatalf("expected ErrCorpusLoad, got %v", err)
	}
}
