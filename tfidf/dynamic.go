package tfidf

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/TheLegendMe/zh-doc-search/tokenize"
)

// DocumentMeta is the metadata stored alongside a dynamically-added
// document, since such documents never appear in the static offsets file.
type DocumentMeta struct {
	Title   string
	Link    string
	Summary string
	Text    string
}

// DynamicIndex supports concurrent add/remove/update against an in-memory
// TF-IDF postings table, with tombstone-based deletion and compaction.
//
// Corrected weight semantics: rawTF stores each document's normalized term
// frequency exactly once, independent of IDF. recomputeIDF always rebuilds
// postings as rawTF * idf from that stored value, so calling it repeatedly
// is idempotent and never compounds weights across calls (the original
// design recomputed from the already-weighted postings, which drifted).
type DynamicIndex struct {
	mu sync.RWMutex

	tokenizer tokenize.Tokenizer

	postings   map[string]map[int32]float64 // term -> docid -> tf*idf (derived)
	rawTF      map[string]map[int32]float64 // term -> docid -> raw normalized tf
	docTokens  map[int32][]string
	docMeta    map[int32]DocumentMeta
	tombstones map[int32]struct{}
	totalDocs  int
}

func NewDynamicIndex(tokenizer tokenize.Tokenizer) *DynamicIndex {
	return &DynamicIndex{
		tokenizer:  tokenizer,
		postings:   make(map[string]map[int32]float64),
		rawTF:      make(map[string]map[int32]float64),
		docTokens:  make(map[int32][]string),
		docMeta:    make(map[int32]DocumentMeta),
		tombstones: make(map[int32]struct{}),
	}
}

// Load replaces the postings table from the index.txt wire format, used as
// a seed so the dynamic index can continue adding docids past a static
// build's total. Tombstones and metadata are reset.
func (d *DynamicIndex) Load(path string, n int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.postings = make(map[string]map[int32]float64)
	d.rawTF = make(map[string]map[int32]float64)
	d.docTokens = make(map[int32][]string)
	d.docMeta = make(map[int32]DocumentMeta)
	d.tombstones = make(map[int32]struct{})
	d.totalDocs = n

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		tab := strings.IndexByte(line, '\t')
		if tab < 0 {
			continue
		}
		term := line[:tab]
		for _, entry := range strings.Split(line[tab+1:], ",") {
			colon := strings.IndexByte(entry, ':')
			if colon < 0 {
				continue
			}
			id, err1 := strconv.ParseInt(entry[:colon], 10, 32)
			w, err2 := strconv.ParseFloat(entry[colon+1:], 64)
			if err1 != nil || err2 != nil {
				continue
			}
			d.setPosting(term, int32(id), w)
			d.setRawTF(term, int32(id), w)
		}
	}
	return scanner.Err()
}

func (d *DynamicIndex) setPosting(term string, docid int32, w float64) {
	m, ok := d.postings[term]
	if !ok {
		m = make(map[int32]float64)
		d.postings[term] = m
	}
	m[docid] = w
}

func (d *DynamicIndex) setRawTF(term string, docid int32, tf float64) {
	m, ok := d.rawTF[term]
	if !ok {
		m = make(map[int32]float64)
		d.rawTF[term] = m
	}
	m[docid] = tf
}

// Add inserts or replaces docid with text, recomputing IDF afterward.
func (d *DynamicIndex) Add(docid int32, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addLocked(docid, text, nil)
}

// AddWithMeta is like Add but also stores retrievable metadata, used for
// documents that aren't present in the static page store.
func (d *DynamicIndex) AddWithMeta(docid int32, meta DocumentMeta) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addLocked(docid, meta.Text, &meta)
}

func (d *DynamicIndex) addLocked(docid int32, text string, meta *DocumentMeta) {
	if old, exists := d.docTokens[docid]; exists {
		d.tombstones[docid] = struct{}{}
		d.forgetRawTFLocked(docid, old)
	}
	if meta != nil {
		d.docMeta[docid] = *meta
	}

	tokens := d.tokenizer.Tokenize(text)
	d.docTokens[docid] = tokens
	delete(d.tombstones, docid)

	d.computeRawTF(docid, tokens)
	d.totalDocs++
	d.recomputeIDFLocked()
}

// AddMany batches several additions with a single final recompute.
func (d *DynamicIndex) AddMany(docs []Document) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, doc := range docs {
		if old, exists := d.docTokens[doc.DocID]; exists {
			d.forgetRawTFLocked(doc.DocID, old)
		}
		tokens := d.tokenizer.Tokenize(doc.Text)
		d.docTokens[doc.DocID] = tokens
		delete(d.tombstones, doc.DocID)
		d.computeRawTF(doc.DocID, tokens)
	}
	d.totalDocs += len(docs)
	d.recomputeIDFLocked()
}

// forgetRawTFLocked drops docid's raw TF entries for the terms in tokens, so
// a re-added document no longer matches terms only its old text had.
func (d *DynamicIndex) forgetRawTFLocked(docid int32, tokens []string) {
	for _, t := range tokens {
		if m, ok := d.rawTF[t]; ok {
			delete(m, docid)
			if len(m) == 0 {
				delete(d.rawTF, t)
			}
		}
	}
}

func (d *DynamicIndex) computeRawTF(docid int32, tokens []string) {
	if len(tokens) == 0 {
		return
	}
	tf := make(map[string]int)
	for _, t := range tokens {
		tf[t]++
	}
	n := float64(len(tokens))
	for term, count := range tf {
		d.setRawTF(term, docid, float64(count)/n)
	}
}

// Remove tombstones docid, compacting automatically if the deleted ratio
// exceeds 20%.
func (d *DynamicIndex) Remove(docid int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tombstones[docid] = struct{}{}
	if d.needsCompactionLocked() {
		d.compactLocked()
	}
}

// Update is Remove followed by Add.
func (d *DynamicIndex) Update(docid int32, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tombstones[docid] = struct{}{}
	if d.needsCompactionLocked() {
		d.compactLocked()
	}
	d.addLocked(docid, text, nil)
}

// GetMeta returns the stored metadata for docid, or ok=false if absent or
// tombstoned.
func (d *DynamicIndex) GetMeta(docid int32) (DocumentMeta, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if _, dead := d.tombstones[docid]; dead {
		return DocumentMeta{}, false
	}
	meta, ok := d.docMeta[docid]
	return meta, ok
}

func (d *DynamicIndex) needsCompactionLocked() bool {
	return d.totalDocs > 0 && float64(len(d.tombstones)) > 0.2*float64(d.totalDocs)
}

// NeedsCompaction reports whether the tombstone ratio exceeds 20%.
func (d *DynamicIndex) NeedsCompaction() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.needsCompactionLocked()
}

// Compact removes tombstoned entries from postings/rawTF and recomputes
// IDF. Exported form acquires the write lock; callers already holding it
// (internal paths) must use compactLocked instead.
func (d *DynamicIndex) Compact() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.compactLocked()
}

func (d *DynamicIndex) compactLocked() {
	for docid := range d.tombstones {
		delete(d.docTokens, docid)
		delete(d.docMeta, docid)
	}
	for term, m := range d.rawTF {
		for docid := range d.tombstones {
			delete(m, docid)
		}
		if len(m) == 0 {
			delete(d.rawTF, term)
		}
	}
	d.totalDocs -= len(d.tombstones)
	if d.totalDocs < 0 {
		d.totalDocs = 0
	}
	d.tombstones = make(map[int32]struct{})
	d.recomputeIDFLocked()
}

// recomputeIDFLocked rebuilds postings fresh from rawTF * idf for every
// term, excluding tombstoned docids. Must be called with the write lock
// held. This is the corrected behavior: it never multiplies an
// already-weighted value again.
func (d *DynamicIndex) recomputeIDFLocked() {
	newPostings := make(map[string]map[int32]float64, len(d.rawTF))
	for term, byDoc := range d.rawTF {
		live := make(map[int32]float64, len(byDoc))
		for docid, tf := range byDoc {
			if _, dead := d.tombstones[docid]; dead {
				continue
			}
			live[docid] = tf
		}
		if len(live) == 0 {
			continue
		}
		df := len(live)
		n := d.totalDocs
		if n == 0 {
			n = 1
		}
		idf := math.Log(float64(n) / float64(df))
		out := make(map[int32]float64, len(live))
		for docid, tf := range live {
			out[docid] = tf * idf
		}
		newPostings[term] = out
	}
	d.postings = newPostings
}

// Stats summarizes the current index state.
type Stats struct {
	TotalDocs      int
	ActiveDocs     int
	DeletedDocs    int
	TotalTerms     int
	PendingUpdates int
}

func (d *DynamicIndex) GetStats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Stats{
		TotalDocs:   d.totalDocs,
		ActiveDocs:  d.totalDocs - len(d.tombstones),
		DeletedDocs: len(d.tombstones),
		TotalTerms:  len(d.postings),
	}
}

// SearchANDCosineRanked mirrors WeightedIndex.SearchANDCosineRanked's
// contract but against the dynamic postings table, skipping tombstoned
// docids and using query TF=1.
func (d *DynamicIndex) SearchANDCosineRanked(terms []string) []ScoredDoc {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(terms) == 0 {
		return nil
	}

	docWeights := make(map[int32][]float64)
	for i, term := range terms {
		byDoc, ok := d.postings[term]
		if !ok {
			return nil
		}
		for docid, weight := range byDoc {
			if _, dead := d.tombstones[docid]; dead {
				continue
			}
			vec, ok := docWeights[docid]
			if !ok {
				vec = make([]float64, len(terms))
				docWeights[docid] = vec
			}
			vec[i] = weight
		}
	}

	n := d.totalDocs
	if n == 0 {
		n = 1
	}
	queryWeights := make([]float64, len(terms))
	var queryNorm float64
	for i, term := range terms {
		df := 1
		if byDoc, ok := d.postings[term]; ok {
			df = len(byDoc)
		}
		idf := math.Log(float64(n) / float64(df))
		queryWeights[i] = idf
		queryNorm += idf * idf
	}
	queryNorm = math.Sqrt(queryNorm)

	var results []ScoredDoc
	for docid, vec := range docWeights {
		hasAll := true
		for _, w := range vec {
			if w == 0 {
				hasAll = false
				break
			}
		}
		if !hasAll {
			continue
		}
		var dot, docNorm float64
		for i, w := range vec {
			dot += queryWeights[i] * w
			docNorm += w * w
		}
		docNorm = math.Sqrt(docNorm)
		if docNorm == 0 || queryNorm == 0 {
			continue
		}
		results = append(results, ScoredDoc{DocID: docid, Score: dot / (docNorm * queryNorm)})
	}
	sortScoredDesc(results)
	return results
}

// Save writes the live (non-tombstoned) postings in the index.txt wire
// format, each term's postings in ascending docid.
func (d *DynamicIndex) Save(path string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	bw := bufio.NewWriter(f)

	terms := make([]string, 0, len(d.postings))
	for t := range d.postings {
		terms = append(terms, t)
	}
	for _, term := range terms {
		byDoc := d.postings[term]
		ids := make([]int32, 0, len(byDoc))
		for docid := range byDoc {
			if _, dead := d.tombstones[docid]; dead {
				continue
			}
			ids = append(ids, docid)
		}
		if len(ids) == 0 {
			continue
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		parts := make([]string, 0, len(ids))
		for _, docid := range ids {
			parts = append(parts, fmt.Sprintf("%d:%s", docid, strconv.FormatFloat(byDoc[docid], 'g', -1, 64)))
		}
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", term, strings.Join(parts, ",")); err != nil {
			return err
		}
	}
	return bw.Flush()
}
