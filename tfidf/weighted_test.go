package tfidf

import (
	"path/filepath"
	"testing"

	"github.com/TheLegendMe/zh-doc-search/tokenize"
)

func buildSample() *WeightedIndex {
	idx := NewWeightedIndex(tokenize.FallbackTokenizer{})
	idx.Build([]Document{
		{DocID: 1, Text: "golang search engine"},
		{DocID: 2, Text: "golang concurrency patterns"},
		{DocID: 3, Text: "python search library"},
	})
	return idx
}

func TestBuildAndSearchAND(t *testing.T) {
	idx := buildSample()
	ids := idx.SearchAND([]string{"golang"})
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("SearchAND(golang) = %v, want [1 2]", ids)
	}
}

func TestSearchANDMissingTerm(t *testing.T) {
	idx := buildSample()
	if got := idx.SearchAND([]string{"nonexistent"}); got != nil {
		t.Errorf("expected nil for missing term, got %v", got)
	}
}

func TestSearchANDCosineRankedOrdering(t *testing.T) {
	idx := buildSample()
	results := idx.SearchANDCosineRanked([]string{"search"})
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].Score < results[i].Score {
			t.Errorf("results not sorted descending by score: %v", results)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	idx := buildSample()
	path := filepath.Join(t.TempDir(), "index.txt")
	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded := NewWeightedIndex(tokenize.FallbackTokenizer{})
	if err := loaded.Load(path, idx.TotalDocs()); err != nil {
		t.Fatal(err)
	}

	got := loaded.SearchAND([]string{"golang"})
	want := idx.SearchAND([]string{"golang"})
	if len(got) != len(want) {
		t.Fatalf("round-tripped SearchAND(golang) = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("docid mismatch at %d: got %d want %d", i, got[i], want[i])
		}
	}
}

func TestSearchANDWeightedTieBreak(t *testing.T) {
	idx := NewWeightedIndex(tokenize.FallbackTokenizer{})
	idx.Build([]Document{
		{DocID: 2, Text: "alpha beta"},
		{DocID: 1, Text: "alpha beta"},
	})
	results := idx.SearchANDWeighted([]string{"alpha", "beta"})
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Score != results[1].Score {
		t.Skip("weights differ, tie-break not exercised")
	}
	if results[0].DocID != 1 || results[1].DocID != 2 {
		t.Errorf("tie-break should order ascending docid, got %v", results)
	}
}
