package tfidf

import (
	"testing"

	"github.com/TheLegendMe/zh-doc-search/tokenize"
)

func TestBuildParallelMatchesBuild(t *testing.T) {
	docs := []Document{
		{DocID: 1, Text: "golang search engine"},
		{DocID: 2, Text: "golang concurrency patterns"},
		{DocID: 3, Text: "python search library"},
		{DocID: 4, Text: "rust systems programming"},
	}

	sequential := NewWeightedIndex(tokenize.FallbackTokenizer{})
	sequential.Build(docs)

	parallel := NewWeightedIndex(tokenize.FallbackTokenizer{})
	if err := parallel.BuildParallel(docs, 3); err != nil {
		t.Fatal(err)
	}

	for _, term := range []string{"golang", "search", "python"} {
		want := sequential.SearchAND([]string{term})
		got := parallel.SearchAND([]string{term})
		if len(want) != len(got) {
			t.Fatalf("term %q: got %v, want %v", term, got, want)
		}
		for i := range want {
			if want[i] != got[i] {
				t.Errorf("term %q: docid mismatch at %d: got %d want %d", term, i, got[i], want[i])
			}
		}
	}
}

func TestBuildParallelEmpty(t *testing.T) {
	idx := NewWeightedIndex(tokenize.FallbackTokenizer{})
	if err := idx.BuildParallel(nil, 4); err != nil {
		t.Fatal(err)
	}
	if idx.TotalDocs() != 0 {
		t.Errorf("TotalDocs() = %d, want 0", idx.TotalDocs())
	}
}
