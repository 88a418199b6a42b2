package keyword

import (
	"container/heap"
	"sort"
	"strings"
)

// Suggestion is one ranked recommendation.
type Suggestion struct {
	Word      string `json:"word"`
	Frequency uint32 `json:"frequency"`
	Distance  int    `json:"distance"`
}

// Recommend returns up to topK suggestions for input. If at least topK
// words have input as a prefix, only prefix matches are returned (distance
// 0, ordered by frequency descending then word ascending). Otherwise the
// prefix matches are combined with the closest remaining words by edit
// distance (halved when input is a non-prefix substring), via a
// bounded max-heap that evicts the worst candidate once it exceeds topK.
func Recommend(input string, words []string, freqs []uint32, topK int) []Suggestion {
	if input == "" || len(words) == 0 || topK <= 0 {
		return nil
	}

	var prefixMatches []Suggestion
	for i, w := range words {
		if strings.HasPrefix(w, input) {
			prefixMatches = append(prefixMatches, Suggestion{Word: w, Frequency: freqs[i], Distance: 0})
		}
	}

	if len(prefixMatches) >= topK {
		sort.Slice(prefixMatches, func(i, j int) bool {
			if prefixMatches[i].Frequency != prefixMatches[j].Frequency {
				return prefixMatches[i].Frequency > prefixMatches[j].Frequency
			}
			return prefixMatches[i].Word < prefixMatches[j].Word
		})
		return prefixMatches[:topK]
	}

	h := &suggestionHeap{}
	heap.Init(h)
	for _, m := range prefixMatches {
		heap.Push(h, m)
	}
	for i, w := range words {
		if strings.HasPrefix(w, input) {
			continue
		}
		dist := editDistance(input, w)
		if strings.Contains(w, input) {
			dist /= 2
		}
		heap.Push(h, Suggestion{Word: w, Frequency: freqs[i], Distance: dist})
		if h.Len() > topK {
			heap.Pop(h)
		}
	}

	result := make([]Suggestion, h.Len())
	copy(result, *h)
	sort.Slice(result, func(i, j int) bool {
		if result[i].Distance != result[j].Distance {
			return result[i].Distance < result[j].Distance
		}
		if result[i].Frequency != result[j].Frequency {
			return result[i].Frequency > result[j].Frequency
		}
		return result[i].Word < result[j].Word
	})
	return result
}

// editDistance is the byte-level Levenshtein distance via a two-row
// rolling DP.
func editDistance(a, b string) int {
	n, m := len(a), len(b)
	if n == 0 {
		return m
	}
	if m == 0 {
		return n
	}
	prev := make([]int, m+1)
	curr := make([]int, m+1)
	for j := 0; j <= m; j++ {
		prev[j] = j
	}
	for i := 1; i <= n; i++ {
		curr[0] = i
		for j := 1; j <= m; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[m]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// suggestionHeap is a bounded max-heap over "worseness": the element Pop
// removes is the one with the largest distance, breaking ties by smallest
// frequency then largest word — the worst candidate, evicted first.
type suggestionHeap []Suggestion

func (h suggestionHeap) Len() int { return len(h) }

func (h suggestionHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.Distance != b.Distance {
		return a.Distance > b.Distance
	}
	if a.Frequency != b.Frequency {
		return a.Frequency < b.Frequency
	}
	return a.Word > b.Word
}

func (h suggestionHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *suggestionHeap) Push(x interface{}) {
	*h = append(*h, x.(Suggestion))
}

func (h *suggestionHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
