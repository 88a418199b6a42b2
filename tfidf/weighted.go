// Package tfidf implements the static weighted inverted index (built once
// offline) and the dynamic inverted index (mutated online).
package tfidf

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/TheLegendMe/zh-doc-search/tokenize"
)

// Posting is one (docid, weight) entry.
type Posting struct {
	DocID  int32
	Weight float64
}

// ScoredDoc is one ranked search result.
type ScoredDoc struct {
	DocID int32
	Score float64
}

// Document is a single input to Build: a stable docid plus the text that
// will be tokenized and weighted.
type Document struct {
	DocID int32
	Text  string
}

// WeightedIndex is the static TF-IDF postings table built by the offline
// pipeline. Safe for concurrent reads once built/loaded; Build/Load must not
// race with readers.
type WeightedIndex struct {
	tokenizer tokenize.Tokenizer
	postings  map[string][]Posting
	// weightOf is an auxiliary (term, docid) -> weight lookup, built
	// alongside postings, so cosine scoring is O(1) per probe instead of a
	// linear scan of the term's posting list.
	weightOf  map[string]map[int32]float64
	totalDocs int
}

func NewWeightedIndex(tokenizer tokenize.Tokenizer) *WeightedIndex {
	return &WeightedIndex{
		tokenizer: tokenizer,
		postings:  make(map[string][]Posting),
		weightOf:  make(map[string]map[int32]float64),
	}
}

// Build performs the two-pass TF-IDF construction: pass one computes
// document frequency, pass two computes per-document weights.
func (w *WeightedIndex) Build(documents []Document) {
	w.postings = make(map[string][]Posting)
	w.weightOf = make(map[string]map[int32]float64)
	w.totalDocs = len(documents)
	if len(documents) == 0 {
		return
	}

	tokensByDoc := make([][]string, len(documents))
	df := make(map[string]int)
	for i, doc := range documents {
		tokens := w.tokenizer.Tokenize(doc.Text)
		tokensByDoc[i] = tokens
		seen := make(map[string]struct{}, len(tokens))
		for _, t := range tokens {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
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
			idf := math.Log((n+1.0)/(float64(dfT)+1.0)) + 1.0
			weight := tfNorm * idf
			w.insert(term, doc.DocID, weight)
		}
	}
	w.sortPostings()
}

func (w *WeightedIndex) insert(term string, docID int32, weight float64) {
	w.postings[term] = append(w.postings[term], Posting{DocID: docID, Weight: weight})
	m, ok := w.weightOf[term]
	if !ok {
		m = make(map[int32]float64)
		w.weightOf[term] = m
	}
	m[docID] = weight
}

func (w *WeightedIndex) sortPostings() {
	for term, list := range w.postings {
		sort.Slice(list, func(i, j int) bool { return list[i].DocID < list[j].DocID })
		w.postings[term] = list
	}
}

func (w *WeightedIndex) TotalDocs() int { return w.totalDocs }

// Save writes the postings in the index.txt wire format: one line per term,
// "term\tdocid:weight,docid:weight,...\n", postings in ascending docid.
func (w *WeightedIndex) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	terms := make([]string, 0, len(w.postings))
	for t := range w.postings {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	for _, term := range terms {
		parts := make([]string, 0, len(w.postings[term]))
		for _, p := range w.postings[term] {
			parts = append(parts, fmt.Sprintf("%d:%s", p.DocID, strconv.FormatFloat(p.Weight, 'g', -1, 64)))
		}
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", term, strings.Join(parts, ",")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Load replaces the current postings with the contents of path, and sets
// totalDocs to n.
func (w *WeightedIndex) Load(path string, n int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w.postings = make(map[string][]Posting)
	w.weightOf = make(map[string]map[int32]float64)
	w.totalDocs = n

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		tabIdx := strings.IndexByte(line, '\t')
		if tabIdx < 0 {
			continue
		}
		term := line[:tabIdx]
		rest := line[tabIdx+1:]
		if rest == "" {
			continue
		}
		for _, entry := range strings.Split(rest, ",") {
			colon := strings.IndexByte(entry, ':')
			if colon < 0 {
				continue
			}
			id, err1 := strconv.ParseInt(entry[:colon], 10, 32)
			weight, err2 := strconv.ParseFloat(entry[colon+1:], 64)
			if err1 != nil || err2 != nil {
				continue
			}
			w.insert(term, int32(id), weight)
		}
	}
	w.sortPostings()
	return scanner.Err()
}

// SearchAND returns the AND-intersection of term postings' docids, merging
// the smallest list first, with no weight fusion.
func (w *WeightedIndex) SearchAND(terms []string) []int32 {
	if len(terms) == 0 {
		return nil
	}
	lists := make([][]int32, 0, len(terms))
	for _, t := range terms {
		postings, ok := w.postings[t]
		if !ok {
			return nil
		}
		ids := make([]int32, len(postings))
		for i, p := range postings {
			ids[i] = p.DocID
		}
		lists = append(lists, ids)
	}
	sort.Slice(lists, func(i, j int) bool { return len(lists[i]) < len(lists[j]) })
	res := lists[0]
	for i := 1; i < len(lists); i++ {
		res = intersectSorted(res, lists[i])
		if len(res) == 0 {
			break
		}
	}
	return res
}

func intersectSorted(a, b []int32) []int32 {
	var out []int32
	p, q := 0, 0
	for p < len(a) && q < len(b) {
		switch {
		case a[p] == b[q]:
			out = append(out, a[p])
			p++
			q++
		case a[p] < b[q]:
			p++
		default:
			q++
		}
	}
	return out
}

// SearchANDWeighted requires every term to match and orders by summed
// weight, descending, tie-break ascending docid.
func (w *WeightedIndex) SearchANDWeighted(terms []string) []ScoredDoc {
	if len(terms) == 0 {
		return nil
	}
	appear := make(map[int32]int)
	score := make(map[int32]float64)
	for _, t := range terms {
		postings, ok := w.postings[t]
		if !ok {
			return nil
		}
		for _, p := range postings {
			appear[p.DocID]++
			score[p.DocID] += p.Weight
		}
	}
	need := len(terms)
	items := make([]ScoredDoc, 0, len(score))
	for docID, s := range score {
		if appear[docID] == need {
			items = append(items, ScoredDoc{DocID: docID, Score: s})
		}
	}
	sortScoredDesc(items)
	return items
}

// SearchORWeighted sums weights over any matching term (no AND requirement).
func (w *WeightedIndex) SearchORWeighted(terms []string) []ScoredDoc {
	if len(terms) == 0 {
		return nil
	}
	score := make(map[int32]float64)
	for _, t := range terms {
		postings, ok := w.postings[t]
		if !ok {
			continue
		}
		for _, p := range postings {
			score[p.DocID] += p.Weight
		}
	}
	items := make([]ScoredDoc, 0, len(score))
	for docID, s := range score {
		items = append(items, ScoredDoc{DocID: docID, Score: s})
	}
	sortScoredDesc(items)
	return items
}

func sortScoredDesc(items []ScoredDoc) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].DocID < items[j].DocID
	})
}

// SearchANDCosineRanked ranks AND-matching documents by cosine similarity
// restricted to the query-term subspace: a document's components outside
// the query terms contribute to neither the dot product nor its norm.
func (w *WeightedIndex) SearchANDCosineRanked(terms []string) []ScoredDoc {
	if len(terms) == 0 {
		return nil
	}
	n := w.totalDocs
	if n == 0 {
		n = 1
	}

	type qdim struct {
		term   string
		weight float64
	}
	qdims := make([]qdim, 0, len(terms))
	var qnorm float64
	for _, t := range terms {
		postings, ok := w.postings[t]
		if !ok {
			return nil
		}
		df := len(postings)
		// Each query term has tf 1, so its tf_norm is 1 and its weight is
		// the same smoothed idf Build uses for document weights.
		idf := logIDF(float64(n), float64(df))
		qdims = append(qdims, qdim{term: t, weight: idf})
		qnorm += idf * idf
	}
	qnorm = math.Sqrt(qnorm)
	if qnorm == 0 {
		return nil
	}

	candidates := w.SearchAND(terms)
	results := make([]ScoredDoc, 0, len(candidates))
	for _, docID := range candidates {
		var dot, docNorm float64
		for _, qd := range qdims {
			docWeight := w.weightOf[qd.term][docID]
			dot += docWeight * qd.weight
			docNorm += docWeight * docWeight
		}
		docNorm = math.Sqrt(docNorm)
		if docNorm == 0 {
			continue
		}
		results = append(results, ScoredDoc{DocID: docID, Score: dot / (qnorm * docNorm)})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})
	return results
}
