// Package search implements the online query path: cache lookup, ranked
// retrieval against the static and dynamic indexes, page resolution, and
// snippet extraction.
package search

import (
	"context"
	"sort"

	"github.com/TheLegendMe/zh-doc-search/cache"
	"github.com/TheLegendMe/zh-doc-search/pagestore"
	"github.com/TheLegendMe/zh-doc-search/tfidf"
	"github.com/TheLegendMe/zh-doc-search/util"
)

// Engine joins the static weighted index, an optional dynamic index, the
// page store, and an optional two-tier cache into one query surface.
type Engine struct {
	static  *tfidf.WeightedIndex
	dynamic *tfidf.DynamicIndex
	store   *pagestore.Store
	cache   *cache.Cache
}

func NewEngine(static *tfidf.WeightedIndex, dynamic *tfidf.DynamicIndex, store *pagestore.Store, c *cache.Cache) *Engine {
	return &Engine{static: static, dynamic: dynamic, store: store, cache: c}
}

const snippetWindow = 120

// QueryRanked returns up to topK results for terms, checking the cache
// first and merging static+dynamic rankings (a dynamic result wins over a
// static one sharing the same docid).
func (e *Engine) QueryRanked(ctx context.Context, terms []string, topK int) []cache.Result {
	if len(terms) == 0 || topK <= 0 {
		return nil
	}

	key := cache.Key(terms, topK)
	if e.cache != nil {
		if results, ok := e.cache.Get(ctx, key); ok {
			util.Logger.Info("[SEARCH] cache hit for key=%s", key)
			return results
		}
	}

	merged := e.rankedMerge(terms)
	if len(merged) > topK {
		merged = merged[:topK]
	}

	results := make([]cache.Result, 0, len(merged))
	for _, sd := range merged {
		r, ok := e.resolve(sd, terms)
		if !ok {
			continue
		}
		results = append(results, r)
	}

	if e.cache != nil && len(results) > 0 {
		e.cache.Put(ctx, key, results)
	}
	util.Logger.Info("[SEARCH] query terms=%v topk=%d results=%d", terms, topK, len(results))
	return results
}

func (e *Engine) rankedMerge(terms []string) []tfidf.ScoredDoc {
	var dynamicResults []tfidf.ScoredDoc
	if e.dynamic != nil {
		dynamicResults = e.dynamic.SearchANDCosineRanked(terms)
	}
	var staticResults []tfidf.ScoredDoc
	if e.static != nil {
		staticResults = e.static.SearchANDCosineRanked(terms)
	}

	seen := make(map[int32]struct{}, len(dynamicResults))
	merged := make([]tfidf.ScoredDoc, 0, len(dynamicResults)+len(staticResults))
	for _, sd := range dynamicResults {
		merged = append(merged, sd)
		seen[sd.DocID] = struct{}{}
	}
	for _, sd := range staticResults {
		if _, dup := seen[sd.DocID]; dup {
			continue
		}
		merged = append(merged, sd)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].DocID < merged[j].DocID
	})
	return merged
}

func (e *Engine) resolve(sd tfidf.ScoredDoc, terms []string) (cache.Result, bool) {
	if e.dynamic != nil {
		if meta, ok := e.dynamic.GetMeta(sd.DocID); ok {
			return cache.Result{
				DocID:   sd.DocID,
				Title:   util.SanitizeUTF8(meta.Title),
				Link:    util.SanitizeUTF8(meta.Link),
				Summary: util.SanitizeUTF8(meta.Summary),
				Score:   sd.Score,
			}, true
		}
	}
	if e.store == nil {
		return cache.Result{}, false
	}
	raw, ok := e.store.ReadByDocID(sd.DocID)
	if !ok {
		return cache.Result{}, false
	}
	return cache.Result{
		DocID:   sd.DocID,
		Title:   util.SanitizeUTF8(raw.Title),
		Link:    util.SanitizeUTF8(raw.Link),
		Summary: util.SanitizeUTF8(MakeSummary(raw.Description, terms, snippetWindow)),
		Score:   sd.Score,
	}, true
}
