// Package keyword builds the frequency dictionary used for keyword
// suggestion and implements the prefix + bounded-edit-distance recommender.
package keyword

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/TheLegendMe/zh-doc-search/tokenize"
)

// Dict is a frequency dictionary: parallel, lexicographically-sorted
// word/frequency arrays.
type Dict struct {
	Words       []string
	Frequencies []uint32
}

// Build reads candidates from path (a single file, one candidate per line,
// or a directory read recursively and tokenized file-by-file), normalizes
// each candidate, and counts frequencies.
//
// Normalization: trim whitespace, ASCII-lowercase. A candidate is kept only
// if it contains at least one CJK Unified Ideograph (U+4E00-U+9FFF) and its
// UTF-8 byte length is >= 3 — this supersedes the original single-file,
// ASCII-only candidate filter.
func Build(path string, tokenizer tokenize.Tokenizer) (*Dict, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	freq := make(map[string]uint32)
	if info.IsDir() {
		err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() {
				return nil
			}
			return tokenizeFileInto(p, tokenizer, freq)
		})
		if err != nil {
			return nil, err
		}
	} else {
		if err := linesFileInto(path, freq); err != nil {
			return nil, err
		}
	}

	if len(freq) == 0 {
		return nil, fmt.Errorf("keyword dict: no candidates survived filtering under %s", path)
	}

	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Strings(words)
	freqs := make([]uint32, len(words))
	for i, w := range words {
		freqs[i] = freq[w]
	}
	return &Dict{Words: words, Frequencies: freqs}, nil
}

func tokenizeFileInto(path string, tokenizer tokenize.Tokenizer, freq map[string]uint32) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	for _, tok := range tokenizer.Tokenize(string(data)) {
		if candidate, ok := normalize(tok); ok {
			freq[candidate]++
		}
	}
	return nil
}

func linesFileInto(path string, freq map[string]uint32) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if candidate, ok := normalize(line); ok {
			freq[candidate]++
		}
	}
	return scanner.Err()
}

func normalize(s string) (string, bool) {
	s = strings.TrimFunc(s, func(r rune) bool {
		return r < utf8.RuneSelf && !isAlnumRune(r)
	})
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	s = string(b)
	if len(s) < 3 {
		return "", false
	}
	if !containsCJK(s) {
		return "", false
	}
	return s, true
}

func isAlnumRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func containsCJK(s string) bool {
	for _, r := range s {
		if r >= 0x4E00 && r <= 0x9FFF {
			return true
		}
	}
	return false
}

// Write emits keyword_dict.txt ("<word> <frequency>" per line) and
// keyword_index.txt (first-UTF8-character -> comma-joined, sorted list of
// 0-based word ids) under dir.
func (d *Dict) Write(dir string) (dictPath, indexPath string, err error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", err
	}
	dictPath = filepath.Join(dir, "keyword_dict.txt")
	indexPath = filepath.Join(dir, "keyword_index.txt")

	df, err := os.Create(dictPath)
	if err != nil {
		return "", "", err
	}
	defer df.Close()
	bw := bufio.NewWriter(df)
	for i, w := range d.Words {
		if _, err := fmt.Fprintf(bw, "%s %d\n", w, d.Frequencies[i]); err != nil {
			return "", "", err
		}
	}
	if err := bw.Flush(); err != nil {
		return "", "", err
	}

	charToIDs := make(map[rune][]int)
	for i, w := range d.Words {
		r, _ := utf8.DecodeRuneInString(w)
		charToIDs[r] = append(charToIDs[r], i)
	}
	chars := make([]rune, 0, len(charToIDs))
	for r := range charToIDs {
		chars = append(chars, r)
	}
	sort.Slice(chars, func(i, j int) bool { return chars[i] < chars[j] })

	idxf, err := os.Create(indexPath)
	if err != nil {
		return "", "", err
	}
	defer idxf.Close()
	iw := bufio.NewWriter(idxf)
	for _, r := range chars {
		ids := charToIDs[r]
		sort.Ints(ids)
		strs := make([]string, len(ids))
		for i, id := range ids {
			strs[i] = fmt.Sprintf("%d", id)
		}
		if _, err := fmt.Fprintf(iw, "%c\t%s\n", r, strings.Join(strs, ",")); err != nil {
			return "", "", err
		}
	}
	if err := iw.Flush(); err != nil {
		return "", "", err
	}
	return dictPath, indexPath, nil
}
