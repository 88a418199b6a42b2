package search

import (
	"strings"
	"unicode/utf8"

	"github.com/TheLegendMe/zh-doc-search/util"
)

// MakeSummary extracts a snippet of at most window bytes of text, starting
// window/2 bytes before the earliest occurrence of any term (both sides
// ASCII-lowercased for matching). The start is moved forward and the end
// backward to UTF-8 rune boundaries, so the result never splits a
// multi-byte character. Falls back to the leading window bytes when no
// term is found.
func MakeSummary(text string, terms []string, window int) string {
	if text == "" {
		return ""
	}
	lower := asciiLower(text)

	pos := -1
	for _, t := range terms {
		if t == "" {
			continue
		}
		if p := strings.Index(lower, asciiLower(t)); p >= 0 {
			if pos == -1 || p < pos {
				pos = p
			}
		}
	}

	if pos == -1 {
		if len(text) <= window {
			return text
		}
		end := util.TruncateToRuneBoundary(text, window)
		return text[:end] + "..."
	}

	start := 0
	if pos > window/2 {
		start = pos - window/2
	}
	end := start + window
	if end > len(text) {
		end = len(text)
	}
	for start < end && !utf8.RuneStart(text[start]) {
		start++
	}
	end = util.TruncateToRuneBoundary(text, end)

	snippet := text[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(text) {
		snippet = snippet + "..."
	}
	return snippet
}

// asciiLower lowercases ASCII letters only, so every byte offset in the
// result matches the same offset in s.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
