package tfidf

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

func logIDF(n, df float64) float64 {
	return math.Log((n+1.0)/(df+1.0)) + 1.0
}

// BuildParallel builds the index the same way Build does, but tokenizes
// documents and accumulates document frequency across a pool of up to
// workers goroutines (runtime.NumCPU() when workers <= 0, and never more
// than len(documents)): each worker claims a contiguous range of documents,
// builds a private partial term->docids map (already deduplicated within a
// document), and merges it under a single mutex. Once every worker is
// done, each term's docid list is sorted and deduplicated, giving the
// document frequency; the final per-document TF-IDF weight computation
// then runs as a single sequential pass, exactly as Build's second pass
// does.
func (w *WeightedIndex) BuildParallel(documents []Document, workers int) error {
	w.postings = make(map[string][]Posting)
	w.weightOf = make(map[string]map[int32]float64)
	w.totalDocs = len(documents)
	if len(documents) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(documents) {
		workers = len(documents)
	}

	tokensByDoc := make([][]string, len(documents))
	termDocIDs := make(map[string][]int32)
	var mu sync.Mutex

	chunk := (len(documents) + workers - 1) / workers
	g, _ := errgroup.WithContext(context.Background())
	for start := 0; start < len(documents); start += chunk {
		start := start
		end := start + chunk
		if end > len(documents) {
			end = len(documents)
		}
		g.Go(func() error {
			partial := make(map[string][]int32)
			for i := start; i < end; i++ {
				tokens := w.tokenizer.Tokenize(documents[i].Text)
				tokensByDoc[i] = tokens
				seen := make(map[string]struct{}, len(tokens))
				for _, t := range tokens {
					if _, ok := seen[t]; ok {
						continue
					}
					seen[t] = struct{}{}
					partial[t] = append(partial[t], documents[i].DocID)
				}
			}
			mu.Lock()
			for term, ids := range partial {
				termDocIDs[term] = append(termDocIDs[term], ids...)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	df := make(map[string]int, len(termDocIDs))
	for term, ids := range termDocIDs {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		ids = dedupSortedInt32(ids)
		df[term] = len(ids)
	}

	n := float64(len(documents))
	for i, doc := range documents {
		tokens := tokensByDoc[i]
		if len(tokens) == 0 {
			continue
		}
		tf := make(map[string]int)
		for _, t := range tokens {
			tf[t]++
		}
		maxTF := 0
		for _, c := range tf {
			if c > maxTF {
				maxTF = c
			}
		}
		if maxTF == 0 {
			continue
		}
		for term, count := range tf {
			dfT := df[term]
			tfNorm := 0.5 + 0.5*(float64(count)/float64(maxTF))
			idfVal := logIDF(n, float64(dfT))
			w.insert(term, doc.DocID, tfNorm*idfVal)
		}
	}
	w.sortPostings()
	return nil
}

func dedupSortedInt32(ids []int32) []int32 {
	if len(ids) == 0 {
		return ids
	}
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}
