// Package tokenize turns document and query text into token streams.
// English letters are lowercased; Chinese characters pass through verbatim,
// matching the token-stream invariant the rest of the engine relies on.
package tokenize

import (
	"strings"
	"sync"

	"github.com/go-ego/gse"
)

// Tokenizer splits text into an ordered token stream.
type Tokenizer interface {
	Tokenize(text string) []string
}

// GseTokenizer is the default Chinese/English tokenizer, backed by a
// search-mode segmenter. Its dictionary is loaded lazily on first use so
// constructing one is cheap.
type GseTokenizer struct {
	dictDir string

	once sync.Once
	seg  gse.Segmenter
	err  error
}

func NewGseTokenizer(dictDir string) *GseTokenizer {
	return &GseTokenizer{dictDir: dictDir}
}

func (g *GseTokenizer) ensureInitialized() error {
	g.once.Do(func() {
		seg, err := gse.New()
		if err != nil {
			g.err = err
			return
		}
		if g.dictDir != "" {
			if err := seg.LoadDict(g.dictDir); err != nil {
				g.err = err
				return
			}
		}
		g.seg = seg
	})
	return g.err
}

func (g *GseTokenizer) Tokenize(text string) []string {
	if err := g.ensureInitialized(); err != nil {
		return FallbackTokenizer{}.Tokenize(text)
	}
	cut := g.seg.CutSearch(text, true)
	out := make([]string, 0, len(cut))
	for _, tok := range cut {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		out = append(out, lowerASCII(tok))
	}
	return out
}

// FallbackTokenizer is a dependency-free tokenizer: runs of ASCII
// alphanumerics become one token each (lowercased), and every CJK Unified
// Ideograph becomes its own single-rune token. Used in tests and by callers
// unwilling to pay the dictionary-load cost of GseTokenizer.
type FallbackTokenizer struct{}

func (FallbackTokenizer) Tokenize(text string) []string {
	var tokens []string
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		ch := runes[i]
		switch {
		case isCJK(ch):
			tokens = append(tokens, string(ch))
			i++
		case isAlnum(ch):
			j := i + 1
			for j < len(runes) && isAlnum(runes[j]) {
				j++
			}
			tokens = append(tokens, lowerASCII(string(runes[i:j])))
			i = j
		default:
			i++
		}
	}
	return tokens
}

func isCJK(ch rune) bool {
	return ch >= 0x4E00 && ch <= 0x9FFF
}

func isAlnum(ch rune) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
