package search

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/TheLegendMe/zh-doc-search/page"
	"github.com/TheLegendMe/zh-doc-search/pagestore"
	"github.com/TheLegendMe/zh-doc-search/tfidf"
	"github.com/TheLegendMe/zh-doc-search/tokenize"
)

func buildTestEngine(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()
	pagesPath := filepath.Join(dir, "pages.bin")
	offsetsPath := filepath.Join(dir, "offsets.bin")

	w, err := pagestore.NewWriter(pagesPath, offsetsPath)
	if err != nil {
		t.Fatal(err)
	}
	pages := []page.Page{
		{DocID: 1, Title: "Golang Search", Link: "http://a", Description: "a fast golang search engine implementation"},
		{DocID: 2, Title: "Golang Concurrency", Link: "http://b", Description: "goroutines and channels in golang"},
	}
	for _, p := range pages {
		if err := w.WritePage(p); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	store := pagestore.Open(pagesPath)
	if err := store.LoadOffsets(offsetsPath); err != nil {
		t.Fatal(err)
	}

	idx := tfidf.NewWeightedIndex(tokenize.FallbackTokenizer{})
	docs := make([]tfidf.Document, len(pages))
	for i, p := range pages {
		docs[i] = tfidf.Document{DocID: p.DocID, Text: p.Title + "\n" + p.Description}
	}
	idx.Build(docs)

	return NewEngine(idx, nil, store, nil)
}

func TestQueryRankedStaticOnly(t *testing.T) {
	e := buildTestEngine(t)
	results := e.QueryRanked(context.Background(), []string{"golang"}, 10)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		if r.Title == "" {
			t.Errorf("expected resolved title, got empty for docid %d", r.DocID)
		}
	}
}

func TestQueryRankedEmptyTerms(t *testing.T) {
	e := buildTestEngine(t)
	if got := e.QueryRanked(context.Background(), nil, 10); got != nil {
		t.Errorf("expected nil for empty terms, got %v", got)
	}
}

func TestQueryRankedDynamicWinsOnCollision(t *testing.T) {
	e := buildTestEngine(t)
	dyn := tfidf.NewDynamicIndex(tokenize.FallbackTokenizer{})
	dyn.AddWithMeta(1, tfidf.DocumentMeta{Title: "Dynamic Override", Link: "http://dyn", Summary: "dynamic summary", Text: "golang dynamic override"})
	e.dynamic = dyn

	results := e.QueryRanked(context.Background(), []string{"golang"}, 10)
	found := false
	for _, r := range results {
		if r.DocID == 1 {
			found = true
			if r.Title != "Dynamic Override" {
				t.Errorf("expected dynamic metadata to win for docid 1, got title %q", r.Title)
			}
		}
	}
	if !found {
		t.Fatal("expected docid 1 in merged results")
	}
}
